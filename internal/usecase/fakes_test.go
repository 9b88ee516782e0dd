package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.JobPosting
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[uuid.UUID]domain.JobPosting{}}
}

func (f *fakeJobRepo) Create(ctx context.Context, job domain.JobPosting) (domain.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	// Distinct timestamps so ordering assertions are meaningful.
	job.CreatedAt = time.Unix(int64(f.seq), 0)
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobRepo) Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return domain.JobPosting{}, domain.NotFoundError{Resource: "job posting"}
	}
	return job, nil
}

func (f *fakeJobRepo) List(ctx context.Context, filter domain.JobFilter) ([]domain.JobPosting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.JobPosting
	for _, job := range f.jobs {
		if filter.EmployerID != nil && job.EmployerID != *filter.EmployerID {
			continue
		}
		if filter.EmployerID == nil && !job.Active {
			continue
		}
		if filter.ActiveOnly && !job.Active {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeJobRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return domain.NotFoundError{Resource: "job posting"}
	}
	job.Active = active
	f.jobs[id] = job
	return nil
}

func (f *fakeJobRepo) MarkPaid(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return domain.NotFoundError{Resource: "job posting"}
	}
	job.PaymentStatus = status
	if status == domain.PaymentCompleted {
		job.Featured = true
		job.Verified = true
	}
	f.jobs[id] = job
	return nil
}

type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]domain.Application
	jobs *fakeJobRepo
	seq  int
}

func newFakeAppRepo(jobs *fakeJobRepo) *fakeAppRepo {
	return &fakeAppRepo{apps: map[uuid.UUID]domain.Application{}, jobs: jobs}
}

func (f *fakeAppRepo) Create(ctx context.Context, app domain.Application) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return domain.Application{}, domain.ErrConflict
		}
	}
	f.seq++
	app.CreatedAt = time.Unix(int64(1000+f.seq), 0)
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeAppRepo) Get(ctx context.Context, id uuid.UUID) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domain.Application{}, domain.NotFoundError{Resource: "application"}
	}
	if job, err := f.jobs.Get(ctx, app.JobID); err == nil {
		app.Job = &job
	}
	return app, nil
}

// ListForEmployer mirrors the production two-step join: resolve the
// employer's posting set, then filter applications by membership.
func (f *fakeAppRepo) ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error) {
	postings, err := f.jobs.List(ctx, domain.JobFilter{EmployerID: &employerID})
	if err != nil {
		return nil, err
	}
	owned := map[uuid.UUID]bool{}
	for _, job := range postings {
		owned[job.ID] = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Application
	for _, app := range f.apps {
		if owned[app.JobID] {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAppRepo) ListForSeeker(ctx context.Context, seekerID uuid.UUID) ([]domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Application
	for _, app := range f.apps {
		if app.ApplicantID == seekerID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAppRepo) UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (domain.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return domain.Application{}, domain.NotFoundError{Resource: "application"}
	}
	app.Status = change.Status
	if change.InterviewDate != nil {
		app.InterviewDate = change.InterviewDate
	}
	if change.Notes != "" {
		app.Notes = change.Notes
	}
	f.apps[id] = app
	return app, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]domain.User{}}
}

func (f *fakeUserRepo) put(user domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if update.CompanyName != nil {
		user.CompanyName = *update.CompanyName
	}
	if update.DID != nil {
		user.DID = *update.DID
	}
	if update.WalletAddress != nil {
		user.WalletAddress = *update.WalletAddress
	}
	if update.ResumeKey != nil {
		user.ResumeKey = *update.ResumeKey
	}
	if update.Credentials != nil {
		user.Credentials = update.Credentials
	}
	f.users[id] = user
	return user, nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings []domain.Rating
}

func (f *fakeRatingRepo) Create(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rating.CreatedAt = time.Now()
	f.ratings = append(f.ratings, rating)
	return rating, nil
}

func (f *fakeRatingRepo) ListForUser(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Rating
	for _, rating := range f.ratings {
		if rating.RatedID == ratedID {
			out = append(out, rating)
		}
	}
	return out, nil
}

type fakeChain struct {
	mu      sync.Mutex
	scores  map[string][]int
	fail    bool
	submits int
}

func newFakeChain() *fakeChain {
	return &fakeChain{scores: map[string][]int{}}
}

func (f *fakeChain) GetReputation(ctx context.Context, address string) (domain.Reputation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Reputation{}, domain.UnavailableError{Subsystem: "chain"}
	}
	scores := f.scores[address]
	rep := domain.Reputation{RatingCount: int64(len(scores))}
	total := 0
	for _, s := range scores {
		total += s
	}
	if len(scores) > 0 {
		rep.AverageScore = float64(total) / float64(len(scores))
	}
	return rep, nil
}

func (f *fakeChain) SubmitRating(ctx context.Context, address string, score int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", domain.UnavailableError{Subsystem: "chain"}
	}
	f.submits++
	f.scores[address] = append(f.scores[address], score)
	return "0xfakehash", nil
}

type fakePayments struct {
	mu      sync.Mutex
	intents []domain.PaymentIntent
}

func (f *fakePayments) CreateIntent(ctx context.Context, job domain.JobPosting) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent := domain.PaymentIntent{
		ID:          uuid.New(),
		JobID:       job.ID,
		Tier:        job.Tier,
		AmountCents: domain.TierPriceCents(job.Tier),
		Status:      domain.PaymentPending,
	}
	f.intents = append(f.intents, intent)
	return intent, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *fakeNotifier) Publish(ctx context.Context, userID string, event domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) byType(eventType string) []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for _, ev := range f.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
