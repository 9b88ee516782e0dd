package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the account with its role and profile attributes in a
// single write. There is no follow-up role write to fail halfway.
func (r *UserRepository) Create(ctx context.Context, user domain.User, passwordHash []byte) (domain.User, error) {
	row, err := userToModel(user)
	if err != nil {
		return domain.User{}, err
	}
	row.PasswordHash = passwordHash

	err = r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrConflict
		}
		return domain.User{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	return userFromModel(row)
}

// GetByLogin looks an account up by username or email.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (domain.User, []byte, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, nil, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, nil, domain.UnavailableError{Subsystem: "backend", Err: err}
	}

	user, err := userFromModel(row)
	if err != nil {
		return domain.User{}, nil, err
	}
	return user, row.PasswordHash, nil
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).Take(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, domain.UnavailableError{Subsystem: "backend", Err: err}
	}
	return userFromModel(row)
}

// Update applies a partial profile update and returns the new state.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (domain.User, error) {
	values := map[string]any{}
	if update.CompanyName != nil {
		values["company_name"] = *update.CompanyName
	}
	if update.DID != nil {
		values["did"] = *update.DID
	}
	if update.WalletAddress != nil {
		values["wallet_address"] = *update.WalletAddress
	}
	if update.ResumeKey != nil {
		values["resume_key"] = *update.ResumeKey
	}
	if update.Credentials != nil {
		encoded, err := json.Marshal(update.Credentials)
		if err != nil {
			return domain.User{}, domain.ValidationError{Field: "credentials", Reason: "not serializable"}
		}
		values["credentials"] = encoded
	}

	if len(values) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return domain.User{}, domain.UnavailableError{Subsystem: "backend", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
	}

	return r.Get(ctx, id)
}

func userToModel(user domain.User) (models.User, error) {
	var credentials []byte
	if len(user.Credentials) > 0 {
		encoded, err := json.Marshal(user.Credentials)
		if err != nil {
			return models.User{}, domain.ValidationError{Field: "credentials", Reason: "not serializable"}
		}
		credentials = encoded
	}

	return models.User{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          string(user.Role),
		CompanyName:   user.CompanyName,
		DID:           user.DID,
		WalletAddress: user.WalletAddress,
		ResumeKey:     user.ResumeKey,
		Credentials:   credentials,
	}, nil
}

func userFromModel(row models.User) (domain.User, error) {
	var credentials []domain.Credential
	if len(row.Credentials) > 0 {
		if err := json.Unmarshal(row.Credentials, &credentials); err != nil {
			return domain.User{}, err
		}
	}

	return domain.User{
		ID:            row.ID,
		Username:      row.Username,
		Email:         row.Email,
		Role:          domain.Role(row.Role),
		CompanyName:   row.CompanyName,
		DID:           row.DID,
		WalletAddress: row.WalletAddress,
		ResumeKey:     row.ResumeKey,
		Credentials:   credentials,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
