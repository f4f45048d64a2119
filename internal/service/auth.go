package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"stockflow/internal/apperror"
	"stockflow/internal/auth"
	"stockflow/internal/config"
	"stockflow/internal/logger"
	"stockflow/internal/model"
	"stockflow/internal/repository"
	"stockflow/internal/session"
)

const minPasswordLength = 6

// Session is what sign-up and sign-in hand back to the client.
type Session struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *model.User    `json:"user"`
	Profile     *model.Profile `json:"profile,omitempty"`
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    string
	SessionID string
}

// Account is the current user with their profile.
type Account struct {
	User    *model.User    `json:"user"`
	Profile *model.Profile `json:"profile"`
}

type AuthService interface {
	// SignUp creates the user and its profile. When the profile insert fails the
	// user row is deleted again.
	SignUp(ctx context.Context, email, password, companyName string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, sessionID string) error
	// Authenticate verifies a bearer token and that its session is still live.
	Authenticate(ctx context.Context, token string) (*Principal, error)
	Me(ctx context.Context, userID string) (*Account, error)
}

type authService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	sessions session.Store
	jwt      config.JWTConfig
	argon    auth.ArgonParams
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

func NewAuthService(users repository.UserRepository, profiles repository.ProfileRepository, sessions session.Store, jwtCfg config.JWTConfig, log *logger.Logger) AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &authService{
		users:    users,
		profiles: profiles,
		sessions: sessions,
		jwt:      jwtCfg,
		argon:    auth.DefaultArgonParams,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

func passwordTooShort(pw string) bool {
	return utf8.RuneCountInString(pw) < minPasswordLength
}

func (s *authService) SignUp(ctx context.Context, email, password, companyName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperror.Validation("a valid email is required")
	}
	if passwordTooShort(password) {
		return nil, apperror.Validation("password must be at least 6 characters")
	}
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, apperror.Validation("company name is required")
	}

	hash, err := auth.HashPassword(password, s.argon)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile, err := s.profiles.Create(ctx, &model.Profile{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		CompanyName: companyName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			return nil, fmt.Errorf("create profile failed: %v; rollback delete user failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("create profile failed: %w", err)
	}

	sess, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	sess.Profile = profile
	return sess, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validation("email and password are required")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *authService) issue(ctx context.Context, user *model.User) (*Session, error) {
	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, user.ID)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	if err := s.sessions.Create(ctx, token.JTI, user.ID, token.ExpiresAt.Sub(now)); err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "session store unavailable")
	}
	return &Session{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt.UTC(),
		User:        user,
	}, nil
}

func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrUnauthenticated
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return apperror.Wrap(apperror.CodeDependency, err, "session store unavailable")
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := auth.ParseAccessToken(s.jwt, token)
	if err != nil {
		s.log.Debug(s.log.WithField(ctx, "reason", err.Error()), "access token rejected")
		return nil, ErrUnauthenticated
	}
	owner, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDependency, err, "user-session lookup failed")
	}
	if !ok || owner != claims.UserID {
		return nil, ErrUnauthenticated
	}
	return &Principal{UserID: claims.UserID, SessionID: claims.ID}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*Account, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &Account{User: user, Profile: profile}, nil
}
