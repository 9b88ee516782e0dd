package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

// JobRepository defines persistence for job postings.
type JobRepository interface {
	Create(ctx context.Context, job domain.JobPosting) (domain.JobPosting, error)
	Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error)
	List(ctx context.Context, filter domain.JobFilter) ([]domain.JobPosting, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ApplicationRepository defines persistence for applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app domain.Application) (domain.Application, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Application, error)
	ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error)
	ListForSeeker(ctx context.Context, seekerID uuid.UUID) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (domain.Application, error)
}

// UserRepository defines profile lookup and mutation.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (domain.User, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (domain.User, error)
}

// RatingRepository defines persistence for reputation ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating domain.Rating) (domain.Rating, error)
	ListForUser(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error)
}

// ResumeStore keeps resume attachments.
type ResumeStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

// ReputationChain is the external contract adapter. Writes return on
// broadcast; confirmation is a separate bounded wait.
type ReputationChain interface {
	GetReputation(ctx context.Context, address string) (domain.Reputation, error)
	SubmitRating(ctx context.Context, address string, score int) (string, error)
}

// PaymentInitiator records a pending charge for a non-basic posting.
type PaymentInitiator interface {
	CreateIntent(ctx context.Context, job domain.JobPosting) (domain.PaymentIntent, error)
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Publish(ctx context.Context, userID string, event domain.Event) error
}
