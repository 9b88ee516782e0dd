package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/logger"
)

var paymentTracer = otel.Tracer("payment")

// PaymentStore persists payment intents.
type PaymentStore interface {
	Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error)
	Get(ctx context.Context, id uuid.UUID) (domain.PaymentIntent, error)
	Resolve(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, providerRef string) (domain.PaymentIntent, error)
}

// JobPaymentStore is the posting surface the payment service touches.
type JobPaymentStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error)
	MarkPaid(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
}

// PaymentService gates tier upgrades on provider confirmation. The
// payment state only ever moves server-side, on the provider callback;
// no client request can assert its own paid state.
type PaymentService struct {
	intents  PaymentStore
	jobs     JobPaymentStore
	notifier Notifier
	logger   *logger.Logger
}

func NewPaymentService(
	intents PaymentStore,
	jobs JobPaymentStore,
	notifier Notifier,
	logger *logger.Logger,
) *PaymentService {
	return &PaymentService{
		intents:  intents,
		jobs:     jobs,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateIntent records the pending charge for a non-basic posting.
func (s *PaymentService) CreateIntent(ctx context.Context, job domain.JobPosting) (domain.PaymentIntent, error) {
	ctx, span := paymentTracer.Start(ctx, "Payment.Service.CreateIntent")
	defer span.End()

	if job.Tier == domain.TierBasic {
		return domain.PaymentIntent{}, domain.ValidationError{Field: "tier", Reason: "basic postings are free"}
	}

	intent, err := s.intents.Create(ctx, domain.PaymentIntent{
		ID:          uuid.New(),
		JobID:       job.ID,
		Tier:        job.Tier,
		AmountCents: domain.TierPriceCents(job.Tier),
		Status:      domain.PaymentPending,
	})
	if err != nil {
		span.RecordError(err)
		return domain.PaymentIntent{}, err
	}

	return intent, nil
}

// Confirm handles the provider's success callback: the intent and the
// posting move to completed and the visibility flags go up.
func (s *PaymentService) Confirm(ctx context.Context, intentID uuid.UUID, providerRef string) (domain.PaymentIntent, error) {
	ctx, span := paymentTracer.Start(ctx, "Payment.Service.Confirm")
	defer span.End()

	intent, err := s.intents.Resolve(ctx, intentID, domain.PaymentCompleted, providerRef)
	if err != nil {
		span.RecordError(err)
		return domain.PaymentIntent{}, err
	}

	if err := s.jobs.MarkPaid(ctx, intent.JobID, domain.PaymentCompleted); err != nil {
		span.RecordError(errors.Wrap(err, "intent resolved but posting not updated"))
		return domain.PaymentIntent{}, err
	}

	s.notifyEmployer(ctx, intent, domain.EventPaymentConfirmed)

	s.logger.Info("payment confirmed",
		"intent_id", intent.ID.String(),
		"job_id", intent.JobID.String(),
		"provider_ref", providerRef)

	return intent, nil
}

// Fail handles the provider's failure callback.
func (s *PaymentService) Fail(ctx context.Context, intentID uuid.UUID, providerRef string) (domain.PaymentIntent, error) {
	ctx, span := paymentTracer.Start(ctx, "Payment.Service.Fail")
	defer span.End()

	intent, err := s.intents.Resolve(ctx, intentID, domain.PaymentFailed, providerRef)
	if err != nil {
		span.RecordError(err)
		return domain.PaymentIntent{}, err
	}

	if err := s.jobs.MarkPaid(ctx, intent.JobID, domain.PaymentFailed); err != nil {
		span.RecordError(err)
		return domain.PaymentIntent{}, err
	}

	s.notifyEmployer(ctx, intent, domain.EventPaymentFailed)
	return intent, nil
}

func (s *PaymentService) notifyEmployer(ctx context.Context, intent domain.PaymentIntent, eventType string) {
	if s.notifier == nil {
		return
	}

	job, err := s.jobs.Get(ctx, intent.JobID)
	if err != nil {
		s.logger.Warn("failed to load posting for payment notification",
			"job_id", intent.JobID.String(),
			"error", err.Error())
		return
	}

	err = s.notifier.Publish(ctx, job.EmployerID.String(), domain.Event{
		Type:      eventType,
		UserID:    job.EmployerID.String(),
		Payload:   map[string]string{"jobId": intent.JobID.String(), "tier": string(intent.Tier)},
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish payment event",
			"event", eventType,
			"error", err.Error())
	}
}
