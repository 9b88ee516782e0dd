package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/database/models"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. Ratings are immutable; there is no update
// path in this layer.
func (r *RatingRepository) Create(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	row := models.Rating{
		ID:      rating.ID,
		RaterID: rating.RaterID,
		RatedID: rating.RatedID,
		Score:   rating.Score,
		Comment: rating.Comment,
		JobID:   rating.JobID,
		TxHash:  rating.TxHash,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return domain.Rating{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	return ratingFromModel(row), nil
}

func (r *RatingRepository) ListForUser(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error) {
	var rows []models.Rating
	err := r.db.WithContext(ctx).
		Where("rated_id = ?", ratedID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	ratings := make([]domain.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, ratingFromModel(row))
	}
	return ratings, nil
}

func ratingFromModel(row models.Rating) domain.Rating {
	return domain.Rating{
		ID:        row.ID,
		RaterID:   row.RaterID,
		RatedID:   row.RatedID,
		Score:     row.Score,
		Comment:   row.Comment,
		JobID:     row.JobID,
		TxHash:    row.TxHash,
		CreatedAt: row.CreatedAt,
	}
}
