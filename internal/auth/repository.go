package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cashya/shoppy-backend/pkg/db/models"
)

// Repository exposes user persistence helpers for the auth flow.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads the user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone loads the user owning the E.164 phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "phone_number = ?", phone).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateByPhone returns the account for the phone number, creating it on
// first login. The boolean reports whether a new account was created.
func (r *Repository) GetOrCreateByPhone(ctx context.Context, phone string) (*models.User, bool, error) {
	user, err := r.FindByPhone(ctx, phone)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	fresh := &models.User{PhoneNumber: phone}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		// Lost the race against a concurrent first login; the row is there now.
		if existing, findErr := r.FindByPhone(ctx, phone); findErr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return fresh, true, nil
}
