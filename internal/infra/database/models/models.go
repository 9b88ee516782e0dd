package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User is the account row. Role is written in the same insert that
// creates the account.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username      string    `gorm:"uniqueIndex;not null"`
	Email         string    `gorm:"uniqueIndex;not null"`
	PasswordHash  []byte    `gorm:"not null"`
	Role          string    `gorm:"not null"`
	CompanyName   string
	DID           string `gorm:"column:did"`
	WalletAddress string
	ResumeKey     string
	Credentials   []byte `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type JobPosting struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EmployerID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Employer       User           `gorm:"foreignKey:EmployerID"`
	Title          string         `gorm:"not null"`
	Description    string         `gorm:"type:text;not null"`
	Location       string         `gorm:"not null"`
	SalaryRange    string         `gorm:"not null"`
	EmploymentType string         `gorm:"not null"`
	Skills         pq.StringArray `gorm:"type:text[]"`
	Deadline       time.Time
	Active         bool `gorm:"index"`
	Featured       bool
	Verified       bool
	PaymentStatus  string    `gorm:"not null;default:'completed'"`
	Tier           string    `gorm:"not null;default:'basic'"`
	CreatedAt      time.Time `gorm:"index:idx_job_postings_created_at,sort:desc"`
	UpdatedAt      time.Time
}

type Application struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobID         uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_job_applicant"`
	Job           JobPosting `gorm:"foreignKey:JobID"`
	ApplicantID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_job_applicant"`
	Applicant     User       `gorm:"foreignKey:ApplicantID"`
	Status        string     `gorm:"not null;default:'pending'"`
	CoverLetter   string     `gorm:"type:text"`
	ResumeKey     string
	InterviewDate *time.Time
	Notes         string
	CreatedAt     time.Time `gorm:"index:idx_applications_created_at,sort:desc"`
	UpdatedAt     time.Time
}

type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RaterID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RatedID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Score     int       `gorm:"not null;check:score >= 1 AND score <= 5"`
	Comment   string
	JobID     *uuid.UUID `gorm:"type:uuid;index"`
	TxHash    string
	CreatedAt time.Time
}

type PaymentIntent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Job         JobPosting `gorm:"foreignKey:JobID"`
	Tier        string     `gorm:"not null"`
	AmountCents int64      `gorm:"not null"`
	Status      string     `gorm:"not null;default:'pending'"`
	ProviderRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
