package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

// CreateJobInput carries the posting form.
type CreateJobInput struct {
	Title          string
	Description    string
	Location       string
	SalaryRange    string
	EmploymentType domain.EmploymentType
	Skills         []string
	Deadline       time.Time
	Tier           domain.Tier
}

// CreateJobResult is the stored posting plus, for paid tiers, the
// pending payment intent the client must settle with the provider.
type CreateJobResult struct {
	Job    domain.JobPosting
	Intent *domain.PaymentIntent
}

type JobUsecase struct {
	jobs     JobRepository
	payments PaymentInitiator
}

func NewJobUsecase(jobs JobRepository, payments PaymentInitiator) *JobUsecase {
	return &JobUsecase{jobs: jobs, payments: payments}
}

// Create validates and stores a posting for the calling employer. Paid
// tiers start with payment pending and visibility flags down; only the
// payment confirmation callback raises them.
func (uc *JobUsecase) Create(ctx context.Context, employerID uuid.UUID, role domain.Role, input CreateJobInput) (CreateJobResult, error) {
	if role != domain.RoleEmployer {
		return CreateJobResult{}, domain.ErrForbidden
	}
	if err := validateJobInput(&input); err != nil {
		return CreateJobResult{}, err
	}

	paymentStatus := domain.PaymentCompleted
	if input.Tier != domain.TierBasic {
		paymentStatus = domain.PaymentPending
	}

	job, err := uc.jobs.Create(ctx, domain.JobPosting{
		ID:             uuid.New(),
		EmployerID:     employerID,
		Title:          input.Title,
		Description:    input.Description,
		Location:       input.Location,
		SalaryRange:    input.SalaryRange,
		EmploymentType: input.EmploymentType,
		Skills:         input.Skills,
		Deadline:       input.Deadline,
		Active:         true,
		PaymentStatus:  paymentStatus,
		Tier:           input.Tier,
	})
	if err != nil {
		return CreateJobResult{}, err
	}

	result := CreateJobResult{Job: job}
	if input.Tier != domain.TierBasic {
		intent, err := uc.payments.CreateIntent(ctx, job)
		if err != nil {
			return CreateJobResult{}, err
		}
		result.Intent = &intent
	}

	return result, nil
}

// ListPublic returns active postings from any employer, newest-first.
func (uc *JobUsecase) ListPublic(ctx context.Context) ([]domain.JobPosting, error) {
	return uc.jobs.List(ctx, domain.JobFilter{ActiveOnly: true})
}

// ListMine returns the calling employer's own postings in any active
// state. Mine and public are mutually exclusive modes by construction.
func (uc *JobUsecase) ListMine(ctx context.Context, employerID uuid.UUID, role domain.Role) ([]domain.JobPosting, error) {
	if role != domain.RoleEmployer {
		return nil, domain.ErrForbidden
	}
	return uc.jobs.List(ctx, domain.JobFilter{EmployerID: &employerID})
}

func (uc *JobUsecase) Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error) {
	return uc.jobs.Get(ctx, id)
}

// SetActive toggles the soft-delete flag on a posting the caller owns.
func (uc *JobUsecase) SetActive(ctx context.Context, callerID, jobID uuid.UUID, active bool) error {
	job, err := uc.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != callerID {
		return domain.ErrForbidden
	}
	return uc.jobs.SetActive(ctx, jobID, active)
}

func validateJobInput(input *CreateJobInput) error {
	if input.Tier == "" {
		input.Tier = domain.TierBasic
	}

	switch {
	case strings.TrimSpace(input.Title) == "":
		return domain.ValidationError{Field: "title", Reason: "required"}
	case strings.TrimSpace(input.Description) == "":
		return domain.ValidationError{Field: "description", Reason: "required"}
	case strings.TrimSpace(input.Location) == "":
		return domain.ValidationError{Field: "location", Reason: "required"}
	case strings.TrimSpace(input.SalaryRange) == "":
		return domain.ValidationError{Field: "salaryRange", Reason: "required"}
	case !input.EmploymentType.Valid():
		return domain.ValidationError{Field: "employmentType", Reason: "unknown value"}
	case input.Deadline.IsZero():
		return domain.ValidationError{Field: "deadline", Reason: "required"}
	case len(input.Skills) == 0:
		return domain.ValidationError{Field: "skills", Reason: "at least one skill is required"}
	case !input.Tier.Valid():
		return domain.ValidationError{Field: "tier", Reason: "unknown value"}
	}
	return nil
}
