package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
)

type ProfileUsecase struct {
	users   UserRepository
	resumes ResumeStore
}

func NewProfileUsecase(users UserRepository, resumes ResumeStore) *ProfileUsecase {
	return &ProfileUsecase{users: users, resumes: resumes}
}

func (uc *ProfileUsecase) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return uc.users.Get(ctx, id)
}

// Update applies a partial edit to the caller's own profile.
func (uc *ProfileUsecase) Update(ctx context.Context, callerID uuid.UUID, update domain.ProfileUpdate) (domain.User, error) {
	return uc.users.Update(ctx, callerID, update)
}

// UploadResume stores a resume file and returns its object key. Size
// and content-type gating happens in the store.
func (uc *ProfileUsecase) UploadResume(ctx context.Context, data []byte) (string, error) {
	return uc.resumes.Upload(ctx, data)
}

// ResumeURL resolves a stored resume key to a retrievable link.
func (uc *ProfileUsecase) ResumeURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", domain.NotFoundError{Resource: "resume"}
	}
	return uc.resumes.URL(ctx, key)
}
