package repository

import (
	"context"
	"time"

	"stockflow/internal/model"
)

// UserRepository defines data access for tenant accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines data access for tenant profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
	UpdateCompanyName(ctx context.Context, userID, companyName string, at time.Time) (*model.Profile, error)
}
