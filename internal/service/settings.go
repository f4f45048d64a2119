package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockflow/internal/apperror"
	"stockflow/internal/auth"
	"stockflow/internal/model"
	"stockflow/internal/repository"
)

// PasswordChange is the settings password form.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

type SettingsService interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateCompanyName(ctx context.Context, userID, companyName string) (*model.Profile, error)
	// ChangePassword checks the form before touching the store. Existing
	// sessions stay valid.
	ChangePassword(ctx context.Context, userID string, in PasswordChange) error
}

type settingsService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	argon    auth.ArgonParams
	now      func() time.Time
}

func NewSettingsService(users repository.UserRepository, profiles repository.ProfileRepository) SettingsService {
	return &settingsService{users: users, profiles: profiles, argon: auth.DefaultArgonParams, now: time.Now}
}

func (s *settingsService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, profileErr(err)
	}
	return p, nil
}

func (s *settingsService) UpdateCompanyName(ctx context.Context, userID, companyName string) (*model.Profile, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, apperror.Validation("company name is required")
	}
	p, err := s.profiles.UpdateCompanyName(ctx, userID, companyName, s.now().UTC())
	if err != nil {
		return nil, profileErr(err)
	}
	return p, nil
}

func (s *settingsService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if in.New != in.Confirm {
		return apperror.Validation("new passwords do not match")
	}
	if passwordTooShort(in.New) {
		return apperror.Validation("password must be at least 6 characters")
	}
	if in.Current == "" {
		return apperror.Validation("current password is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnauthenticated
		}
		return err
	}
	ok, err := auth.VerifyPassword(in.Current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return apperror.Validation("current password is incorrect")
	}

	hash, err := auth.HashPassword(in.New, s.argon)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

func profileErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProfileNotFound
	}
	return err
}
