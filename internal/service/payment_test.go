package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/logger"
)

type memPaymentStore struct {
	mu      sync.Mutex
	intents map[uuid.UUID]domain.PaymentIntent
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{intents: map[uuid.UUID]domain.PaymentIntent{}}
}

func (m *memPaymentStore) Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[intent.ID] = intent
	return intent, nil
}

func (m *memPaymentStore) Get(ctx context.Context, id uuid.UUID) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return domain.PaymentIntent{}, domain.NotFoundError{Resource: "payment intent"}
	}
	return intent, nil
}

func (m *memPaymentStore) Resolve(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, providerRef string) (domain.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	if !ok {
		return domain.PaymentIntent{}, domain.NotFoundError{Resource: "payment intent"}
	}
	if intent.Status != domain.PaymentPending {
		return domain.PaymentIntent{}, domain.ErrConflict
	}
	intent.Status = status
	intent.ProviderRef = providerRef
	m.intents[id] = intent
	return intent, nil
}

type memJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]domain.JobPosting
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: map[uuid.UUID]domain.JobPosting{}}
}

func (m *memJobStore) Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.JobPosting{}, domain.NotFoundError{Resource: "job posting"}
	}
	return job, nil
}

func (m *memJobStore) MarkPaid(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.NotFoundError{Resource: "job posting"}
	}
	job.PaymentStatus = status
	if status == domain.PaymentCompleted {
		job.Featured = true
		job.Verified = true
	}
	m.jobs[id] = job
	return nil
}

func premiumJob(employerID uuid.UUID) domain.JobPosting {
	return domain.JobPosting{
		ID:            uuid.New(),
		EmployerID:    employerID,
		Tier:          domain.TierPremium,
		PaymentStatus: domain.PaymentPending,
	}
}

func TestPremiumPostingCompletesOnlyOnConfirmation(t *testing.T) {
	intents := newMemPaymentStore()
	jobs := newMemJobStore()
	svc := NewPaymentService(intents, jobs, &memNotifier{}, logger.New(8))

	job := premiumJob(uuid.New())
	jobs.jobs[job.ID] = job

	intent, err := svc.CreateIntent(context.Background(), job)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.Status != domain.PaymentPending {
		t.Fatalf("intent should start pending, got %s", intent.Status)
	}
	if intent.AmountCents != domain.TierPriceCents(domain.TierPremium) {
		t.Fatalf("unexpected amount %d", intent.AmountCents)
	}

	// Before confirmation the posting never reads back completed.
	stored, _ := jobs.Get(context.Background(), job.ID)
	if stored.PaymentStatus == domain.PaymentCompleted || stored.Featured {
		t.Fatalf("posting paid before confirmation: %+v", stored)
	}

	if _, err := svc.Confirm(context.Background(), intent.ID, "prov-123"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	stored, _ = jobs.Get(context.Background(), job.ID)
	if stored.PaymentStatus != domain.PaymentCompleted {
		t.Fatalf("expected completed, got %s", stored.PaymentStatus)
	}
	if !stored.Featured || !stored.Verified {
		t.Fatal("expected visibility flags after confirmation")
	}
}

func TestConfirmTwiceConflicts(t *testing.T) {
	intents := newMemPaymentStore()
	jobs := newMemJobStore()
	svc := NewPaymentService(intents, jobs, nil, logger.New(8))

	job := premiumJob(uuid.New())
	jobs.jobs[job.ID] = job

	intent, err := svc.CreateIntent(context.Background(), job)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	if _, err := svc.Confirm(context.Background(), intent.ID, "prov-1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), intent.ID, "prov-2"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on replayed callback, got %v", err)
	}
}

func TestFailedPaymentLeavesFlagsDown(t *testing.T) {
	intents := newMemPaymentStore()
	jobs := newMemJobStore()
	svc := NewPaymentService(intents, jobs, nil, logger.New(8))

	job := premiumJob(uuid.New())
	jobs.jobs[job.ID] = job

	intent, err := svc.CreateIntent(context.Background(), job)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	if _, err := svc.Fail(context.Background(), intent.ID, "prov-err"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	stored, _ := jobs.Get(context.Background(), job.ID)
	if stored.PaymentStatus != domain.PaymentFailed || stored.Featured || stored.Verified {
		t.Fatalf("unexpected posting state %+v", stored)
	}
}

func TestBasicTierHasNoIntent(t *testing.T) {
	svc := NewPaymentService(newMemPaymentStore(), newMemJobStore(), nil, logger.New(8))

	_, err := svc.CreateIntent(context.Background(), domain.JobPosting{ID: uuid.New(), Tier: domain.TierBasic})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
