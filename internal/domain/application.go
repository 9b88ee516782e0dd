package domain

import (
	"time"

	"github.com/google/uuid"
)

// Application is a seeker's submission against a posting. At most one
// application may exist per (job, applicant) pair.
type Application struct {
	ID            uuid.UUID         `json:"id"`
	JobID         uuid.UUID         `json:"jobId"`
	ApplicantID   uuid.UUID         `json:"applicantId"`
	Status        ApplicationStatus `json:"status"`
	CoverLetter   string            `json:"coverLetter"`
	ResumeKey     string            `json:"resumeKey,omitempty"`
	InterviewDate *time.Time        `json:"interviewDate,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`

	// Job is eager-loaded on employer listings.
	Job *JobPosting `json:"job,omitempty"`
}

// StatusChange carries the optional attributes of a status update.
type StatusChange struct {
	Status        ApplicationStatus `json:"status"`
	InterviewDate *time.Time        `json:"interviewDate,omitempty"`
	Notes         string            `json:"notes,omitempty"`
}
