package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/database/models"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts an application. The (job, applicant) unique index
// turns a repeat application into ErrConflict.
func (r *ApplicationRepository) Create(ctx context.Context, app domain.Application) (domain.Application, error) {
	row := models.Application{
		ID:          app.ID,
		JobID:       app.JobID,
		ApplicantID: app.ApplicantID,
		Status:      string(app.Status),
		CoverLetter: app.CoverLetter,
		ResumeKey:   app.ResumeKey,
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Application{}, domain.ErrConflict
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Application{}, domain.NotFoundError{Resource: "job posting"}
		}
		return domain.Application{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	return applicationFromModel(row), nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id uuid.UUID) (domain.Application, error) {
	var row models.Application
	err := r.db.WithContext(ctx).Preload("Job").Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.NotFoundError{Resource: "application"}
		}
		return domain.Application{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return applicationFromModel(row), nil
}

// ListForEmployer resolves the employer's posting set first, then
// selects applications whose job is in that set. Descending creation
// time is preserved across the join.
func (r *ApplicationRepository) ListForEmployer(ctx context.Context, employerID uuid.UUID) ([]domain.Application, error) {
	postingIDs := r.db.Model(&models.JobPosting{}).
		Select("id").
		Where("employer_id = ?", employerID)

	var rows []models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("job_id IN (?)", postingIDs).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	return applicationsFromModels(rows), nil
}

func (r *ApplicationRepository) ListForSeeker(ctx context.Context, seekerID uuid.UUID) ([]domain.Application, error) {
	var rows []models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("applicant_id = ?", seekerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return applicationsFromModels(rows), nil
}

// UpdateStatus persists a status change with its optional attributes.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange) (domain.Application, error) {
	values := map[string]any{"status": string(change.Status)}
	if change.InterviewDate != nil {
		values["interview_date"] = change.InterviewDate
	}
	if change.Notes != "" {
		values["notes"] = change.Notes
	}

	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return domain.Application{}, domain.UnavailableError{Subsystem: "backend", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.Application{}, domain.NotFoundError{Resource: "application"}
	}

	return r.Get(ctx, id)
}

func applicationsFromModels(rows []models.Application) []domain.Application {
	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, applicationFromModel(row))
	}
	return apps
}

func applicationFromModel(row models.Application) domain.Application {
	app := domain.Application{
		ID:            row.ID,
		JobID:         row.JobID,
		ApplicantID:   row.ApplicantID,
		Status:        domain.ApplicationStatus(row.Status),
		CoverLetter:   row.CoverLetter,
		ResumeKey:     row.ResumeKey,
		InterviewDate: row.InterviewDate,
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Job.ID != uuid.Nil {
		job := jobFromModel(row.Job)
		app.Job = &job
	}
	return app
}
