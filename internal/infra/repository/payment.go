package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/database/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	row := models.PaymentIntent{
		ID:          intent.ID,
		JobID:       intent.JobID,
		Tier:        string(intent.Tier),
		AmountCents: intent.AmountCents,
		Status:      string(intent.Status),
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return domain.PaymentIntent{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return intentFromModel(row), nil
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (domain.PaymentIntent, error) {
	var row models.PaymentIntent
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PaymentIntent{}, domain.NotFoundError{Resource: "payment intent"}
		}
		return domain.PaymentIntent{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return intentFromModel(row), nil
}

// Resolve moves a pending intent to its terminal state. Only pending
// intents match, so a duplicate provider callback is a no-op conflict.
func (r *PaymentRepository) Resolve(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, providerRef string) (domain.PaymentIntent, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, string(domain.PaymentPending)).
		Updates(map[string]any{
			"status":       string(status),
			"provider_ref": providerRef,
		})
	if res.Error != nil {
		return domain.PaymentIntent{}, domain.UnavailableError{Subsystem: "backend", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return domain.PaymentIntent{}, err
		}
		return domain.PaymentIntent{}, domain.ErrConflict
	}

	return r.Get(ctx, id)
}

func intentFromModel(row models.PaymentIntent) domain.PaymentIntent {
	return domain.PaymentIntent{
		ID:          row.ID,
		JobID:       row.JobID,
		Tier:        domain.Tier(row.Tier),
		AmountCents: row.AmountCents,
		Status:      domain.PaymentStatus(row.Status),
		ProviderRef: row.ProviderRef,
		CreatedAt:   row.CreatedAt,
	}
}
