package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobPosting is an employer's listing. Featured and Verified are only
// raised by a confirmed payment, never at creation time.
type JobPosting struct {
	ID             uuid.UUID      `json:"id"`
	EmployerID     uuid.UUID      `json:"employerId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Location       string         `json:"location"`
	SalaryRange    string         `json:"salaryRange"`
	EmploymentType EmploymentType `json:"employmentType"`
	Skills         []string       `json:"skills"`
	Deadline       time.Time      `json:"deadline"`
	Active         bool           `json:"active"`
	Featured       bool           `json:"featured"`
	Verified       bool           `json:"verified"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	Tier           Tier           `json:"tier"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// JobFilter selects postings for listing. Mine and public mode are
// mutually exclusive: when EmployerID is set the caller sees their own
// postings in any active state, otherwise only active postings.
type JobFilter struct {
	ActiveOnly bool
	EmployerID *uuid.UUID
}

// PaymentIntent records a pending charge for a non-basic posting.
type PaymentIntent struct {
	ID          uuid.UUID     `json:"id"`
	JobID       uuid.UUID     `json:"jobId"`
	Tier        Tier          `json:"tier"`
	AmountCents int64         `json:"amountCents"`
	Status      PaymentStatus `json:"status"`
	ProviderRef string        `json:"providerRef,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// TierPriceCents returns the charge for a tier upgrade. Basic is free.
func TierPriceCents(t Tier) int64 {
	switch t {
	case TierFeatured:
		return 4900
	case TierPremium:
		return 9900
	default:
		return 0
	}
}
