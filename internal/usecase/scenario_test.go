package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

// Walks the core hiring flow end to end over in-memory stores: an
// employer posts a free-tier job, a seeker applies, and the employer
// sees exactly that application pending review.
func TestHiringFlow(t *testing.T) {
	jobs := newFakeJobRepo()
	apps := newFakeAppRepo(jobs)
	notifier := &fakeNotifier{}
	jobUC := NewJobUsecase(jobs, &fakePayments{})
	appUC := NewApplicationUsecase(apps, jobs, notifier)
	ctx := context.Background()

	acme := uuid.New()
	jane := uuid.New()

	posted, err := jobUC.Create(ctx, acme, domain.RoleEmployer, validJobInput(domain.TierBasic))
	if err != nil {
		t.Fatalf("post job: %v", err)
	}
	if posted.Intent != nil {
		t.Fatal("free tier should not require payment")
	}

	public, err := jobUC.ListPublic(ctx)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(public) != 1 || public[0].Title != "Backend Engineer" {
		t.Fatalf("public board should show the new posting, got %d entries", len(public))
	}

	application, err := appUC.Apply(ctx, jane, domain.RoleJobSeeker, posted.Job.ID, "I am a great fit", "resumes/jane.pdf")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	inbox, err := appUC.ListForEmployer(ctx, acme, domain.RoleEmployer)
	if err != nil {
		t.Fatalf("employer inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("inbox has %d applications, want 1", len(inbox))
	}
	got := inbox[0]
	if got.ID != application.ID || got.ApplicantID != jane {
		t.Fatal("inbox entry does not match the submitted application")
	}
	if got.Status != domain.ApplicationPending {
		t.Fatalf("status = %v, want pending", got.Status)
	}
	if got.CoverLetter != "I am a great fit" {
		t.Fatalf("cover letter = %q", got.CoverLetter)
	}

	if len(notifier.byType(domain.EventApplicationReceived)) != 1 {
		t.Fatal("employer should receive one application event")
	}
}
