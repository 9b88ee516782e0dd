package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

type ApplicationUsecase struct {
	applications ApplicationRepository
	jobs         JobRepository
	notifier     Notifier
}

func NewApplicationUsecase(
	applications ApplicationRepository,
	jobs JobRepository,
	notifier Notifier,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		applications: applications,
		jobs:         jobs,
		notifier:     notifier,
	}
}

// Apply submits a seeker's application against an active posting. A
// repeat application for the same posting is a conflict.
func (uc *ApplicationUsecase) Apply(ctx context.Context, applicantID uuid.UUID, role domain.Role, jobID uuid.UUID, coverLetter, resumeKey string) (domain.Application, error) {
	if role != domain.RoleJobSeeker {
		return domain.Application{}, domain.ErrForbidden
	}
	if strings.TrimSpace(coverLetter) == "" {
		return domain.Application{}, domain.ValidationError{Field: "coverLetter", Reason: "required"}
	}

	job, err := uc.jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Application{}, err
	}
	if !job.Active {
		return domain.Application{}, domain.ValidationError{Field: "jobId", Reason: "posting is no longer active"}
	}

	app, err := uc.applications.Create(ctx, domain.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      domain.ApplicationPending,
		CoverLetter: coverLetter,
		ResumeKey:   resumeKey,
	})
	if err != nil {
		return domain.Application{}, err
	}

	uc.publish(ctx, job.EmployerID.String(), domain.EventApplicationReceived, map[string]string{
		"applicationId": app.ID.String(),
		"jobId":         jobID.String(),
	})

	return app, nil
}

// UpdateStatus applies a status change on behalf of the employer that
// owns the referenced posting. Transitions outside the allowed table
// are rejected.
func (uc *ApplicationUsecase) UpdateStatus(ctx context.Context, callerID uuid.UUID, applicationID uuid.UUID, change domain.StatusChange) (domain.Application, error) {
	if !change.Status.Valid() {
		return domain.Application{}, domain.ValidationError{Field: "status", Reason: "unknown value"}
	}

	app, err := uc.applications.Get(ctx, applicationID)
	if err != nil {
		return domain.Application{}, err
	}

	job := app.Job
	if job == nil {
		resolved, err := uc.jobs.Get(ctx, app.JobID)
		if err != nil {
			return domain.Application{}, err
		}
		job = &resolved
	}
	if job.EmployerID != callerID {
		return domain.Application{}, domain.ErrForbidden
	}

	if !app.Status.CanTransitionTo(change.Status) {
		return domain.Application{}, domain.ErrInvalidTransition
	}
	if change.Status == domain.ApplicationInterview && change.InterviewDate == nil {
		return domain.Application{}, domain.ValidationError{Field: "interviewDate", Reason: "required for interview status"}
	}

	updated, err := uc.applications.UpdateStatus(ctx, applicationID, change)
	if err != nil {
		return domain.Application{}, err
	}

	uc.publish(ctx, app.ApplicantID.String(), domain.EventApplicationStatus, map[string]string{
		"applicationId": applicationID.String(),
		"status":        string(change.Status),
	})

	return updated, nil
}

// ListForEmployer returns applications across every posting the
// employer owns, newest-first.
func (uc *ApplicationUsecase) ListForEmployer(ctx context.Context, employerID uuid.UUID, role domain.Role) ([]domain.Application, error) {
	if role != domain.RoleEmployer {
		return nil, domain.ErrForbidden
	}
	return uc.applications.ListForEmployer(ctx, employerID)
}

// ListForSeeker returns the seeker's own applications, newest-first.
func (uc *ApplicationUsecase) ListForSeeker(ctx context.Context, seekerID uuid.UUID) ([]domain.Application, error) {
	return uc.applications.ListForSeeker(ctx, seekerID)
}

func (uc *ApplicationUsecase) publish(ctx context.Context, userID, eventType string, payload map[string]string) {
	if uc.notifier == nil {
		return
	}
	_ = uc.notifier.Publish(ctx, userID, domain.Event{
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
