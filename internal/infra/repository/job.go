package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/database/models"
)

const listingCacheTTL = 30 // seconds

type JobRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewJobRepository wires the posting store. mc may be nil, in which
// case public listings always hit Postgres.
func NewJobRepository(db *gorm.DB, mc *memcache.Client) *JobRepository {
	return &JobRepository{db: db, mc: mc}
}

func (r *JobRepository) Create(ctx context.Context, job domain.JobPosting) (domain.JobPosting, error) {
	row := jobToModel(job)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return domain.JobPosting{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	r.invalidateListings()
	return jobFromModel(row), nil
}

func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (domain.JobPosting, error) {
	var row models.JobPosting
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.JobPosting{}, domain.NotFoundError{Resource: "job posting"}
		}
		return domain.JobPosting{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return jobFromModel(row), nil
}

// List returns postings newest-first. Mine mode (EmployerID set)
// bypasses the cache and includes inactive postings; public mode is
// cached under a key derived from the filter.
func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.JobPosting, error) {
	if filter.EmployerID == nil && r.mc != nil {
		if jobs, ok := r.cachedListing(filter); ok {
			return jobs, nil
		}
	}

	query := r.db.WithContext(ctx).Model(&models.JobPosting{}).Order("created_at DESC")
	if filter.EmployerID != nil {
		query = query.Where("employer_id = ?", *filter.EmployerID)
	} else {
		query = query.Where("active = ?", true)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var rows []models.JobPosting
	if err := query.Find(&rows).Error; err != nil {
		return nil, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	jobs := make([]domain.JobPosting, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, jobFromModel(row))
	}

	if filter.EmployerID == nil && r.mc != nil {
		r.storeListing(filter, jobs)
	}

	return jobs, nil
}

// SetActive toggles the soft-delete flag.
func (r *JobRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return domain.UnavailableError{Subsystem: "backend", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "job posting"}
	}
	r.invalidateListings()
	return nil
}

// MarkPaid flips the payment state and raises the visibility flags in
// one update. Called by the payment service, never from a client path.
func (r *JobRepository) MarkPaid(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	values := map[string]any{"payment_status": string(status)}
	if status == domain.PaymentCompleted {
		values["featured"] = true
		values["verified"] = true
	}

	res := r.db.WithContext(ctx).Model(&models.JobPosting{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return domain.UnavailableError{Subsystem: "backend", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "job posting"}
	}
	r.invalidateListings()
	return nil
}

// Listing cache. Keys embed a generation counter so a single increment
// invalidates every cached filter combination at once.

func (r *JobRepository) listingKey(filter domain.JobFilter) string {
	generation := uint64(0)
	if item, err := r.mc.Get("jobs:gen"); err == nil {
		generation = xxh3.Hash(item.Value)
	}
	payload := fmt.Sprintf("active=%v", filter.ActiveOnly)
	return fmt.Sprintf("jobs:pub:%d:%016x", generation, xxh3.HashString(payload))
}

func (r *JobRepository) cachedListing(filter domain.JobFilter) ([]domain.JobPosting, bool) {
	item, err := r.mc.Get(r.listingKey(filter))
	if err != nil {
		return nil, false
	}
	var jobs []domain.JobPosting
	if err := json.Unmarshal(item.Value, &jobs); err != nil {
		return nil, false
	}
	return jobs, true
}

func (r *JobRepository) storeListing(filter domain.JobFilter, jobs []domain.JobPosting) {
	encoded, err := json.Marshal(jobs)
	if err != nil {
		return
	}
	_ = r.mc.Set(&memcache.Item{
		Key:        r.listingKey(filter),
		Value:      encoded,
		Expiration: listingCacheTTL,
	})
}

func (r *JobRepository) invalidateListings() {
	if r.mc == nil {
		return
	}
	_ = r.mc.Set(&memcache.Item{
		Key:   "jobs:gen",
		Value: []byte(time.Now().Format(time.RFC3339Nano)),
	})
}

func jobToModel(job domain.JobPosting) models.JobPosting {
	return models.JobPosting{
		ID:             job.ID,
		EmployerID:     job.EmployerID,
		Title:          job.Title,
		Description:    job.Description,
		Location:       job.Location,
		SalaryRange:    job.SalaryRange,
		EmploymentType: string(job.EmploymentType),
		Skills:         pq.StringArray(job.Skills),
		Deadline:       job.Deadline,
		Active:         job.Active,
		Featured:       job.Featured,
		Verified:       job.Verified,
		PaymentStatus:  string(job.PaymentStatus),
		Tier:           string(job.Tier),
	}
}

func jobFromModel(row models.JobPosting) domain.JobPosting {
	return domain.JobPosting{
		ID:             row.ID,
		EmployerID:     row.EmployerID,
		Title:          row.Title,
		Description:    row.Description,
		Location:       row.Location,
		SalaryRange:    row.SalaryRange,
		EmploymentType: domain.EmploymentType(row.EmploymentType),
		Skills:         []string(row.Skills),
		Deadline:       row.Deadline,
		Active:         row.Active,
		Featured:       row.Featured,
		Verified:       row.Verified,
		PaymentStatus:  domain.PaymentStatus(row.PaymentStatus),
		Tier:           domain.Tier(row.Tier),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
