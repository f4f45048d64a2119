package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockflow/internal/apperror"
	"stockflow/internal/auth"
	"stockflow/internal/config"
	"stockflow/internal/model"
	"stockflow/internal/repository"
	repoMocks "stockflow/internal/repository/mocks"
	sessionMocks "stockflow/internal/session/mocks"
)

var (
	testJWTConfig = config.JWTConfig{Secret: "s3cret", Issuer: "stockflow", ExpirationMinutes: 60}
	testArgon     = auth.ArgonParams{Memory: 64, Time: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16}
)

type authFixture struct {
	svc      *authService
	users    *repoMocks.MockUserRepository
	profiles *repoMocks.MockProfileRepository
	sessions *sessionMocks.MockStore
}

func newAuthFixture() authFixture {
	f := authFixture{
		users:    new(repoMocks.MockUserRepository),
		profiles: new(repoMocks.MockProfileRepository),
		sessions: new(sessionMocks.MockStore),
	}
	f.svc = NewAuthService(f.users, f.profiles, f.sessions, testJWTConfig, nil).(*authService)
	f.svc.argon = testArgon
	return f
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := auth.HashPassword(pw, testArgon)
	require.NoError(t, err)
	return h
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user, profile and session", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "owner@acme.test" && u.PasswordHash != "secret1"
		})).Return(&model.User{ID: "user-1", Email: "owner@acme.test"}, nil)
		f.profiles.On("Create", ctx, mock.MatchedBy(func(p *model.Profile) bool {
			return p.UserID == "user-1" && p.CompanyName == "Acme"
		})).Return(&model.Profile{ID: "prof-1", UserID: "user-1", CompanyName: "Acme"}, nil)
		f.sessions.On("Create", ctx, mock.AnythingOfType("string"), "user-1", time.Hour).Return(nil)

		sess, err := f.svc.SignUp(ctx, " Owner@Acme.test ", "secret1", " Acme ")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", sess.TokenType)
		assert.Equal(t, "Acme", sess.Profile.CompanyName)

		claims, err := auth.ParseAccessToken(testJWTConfig, sess.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})

	t.Run("profile failure deletes the user", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.Anything).Return(&model.User{ID: "user-1"}, nil)
		f.profiles.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))
		f.users.On("Delete", ctx, "user-1").Return(nil)

		_, err := f.svc.SignUp(ctx, "owner@acme.test", "secret1", "Acme")
		assert.EqualError(t, err, "create profile failed: insert failed")
		f.users.AssertExpectations(t)
		f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("profile failure and rollback failure", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.Anything).Return(&model.User{ID: "user-1"}, nil)
		f.profiles.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))
		f.users.On("Delete", ctx, "user-1").Return(errors.New("delete failed"))

		_, err := f.svc.SignUp(ctx, "owner@acme.test", "secret1", "Acme")
		assert.ErrorContains(t, err, "rollback delete user failed: delete failed")
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)

		_, err := f.svc.SignUp(ctx, "owner@acme.test", "secret1", "Acme")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	for name, args := range map[string][3]string{
		"invalid email":  {"not-an-email", "secret1", "Acme"},
		"short password": {"owner@acme.test", "12345", "Acme"},
		"no company":     {"owner@acme.test", "secret1", "  "},
	} {
		t.Run(name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.svc.SignUp(ctx, args[0], args[1], args[2])
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
			f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	hash := mustHash(t, "secret1")

	t.Run("valid credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "owner@acme.test").Return(&model.User{ID: "user-1", PasswordHash: hash}, nil)
		f.sessions.On("Create", ctx, mock.Anything, "user-1", time.Hour).Return(nil)

		sess, err := f.svc.SignIn(ctx, "OWNER@acme.test", "secret1")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "owner@acme.test").Return(&model.User{ID: "user-1", PasswordHash: hash}, nil)

		_, err := f.svc.SignIn(ctx, "owner@acme.test", "secret2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "ghost@acme.test").Return(nil, sql.ErrNoRows)

		_, err := f.svc.SignIn(ctx, "ghost@acme.test", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("session store down", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "owner@acme.test").Return(&model.User{ID: "user-1", PasswordHash: hash}, nil)
		f.sessions.On("Create", ctx, mock.Anything, "user-1", mock.Anything).Return(errors.New("dial tcp"))

		_, err := f.svc.SignIn(ctx, "owner@acme.test", "secret1")
		assert.True(t, apperror.IsCode(err, apperror.CodeDependency))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	issued, err := auth.MintAccessToken(testJWTConfig, time.Now(), "user-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		setup    func(s *sessionMocks.MockStore)
		wantErr  error
		wantCode apperror.Code
	}{
		{
			name:  "live session",
			token: issued.Token,
			setup: func(s *sessionMocks.MockStore) {
				s.On("Lookup", ctx, issued.JTI).Return("user-1", true, nil)
			},
		},
		{
			name:  "revoked session",
			token: issued.Token,
			setup: func(s *sessionMocks.MockStore) {
				s.On("Lookup", ctx, issued.JTI).Return("", false, nil)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name:  "session owned by someone else",
			token: issued.Token,
			setup: func(s *sessionMocks.MockStore) {
				s.On("Lookup", ctx, issued.JTI).Return("user-2", true, nil)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name:  "lookup failure",
			token: issued.Token,
			setup: func(s *sessionMocks.MockStore) {
				s.On("Lookup", ctx, issued.JTI).Return("", false, errors.New("i/o timeout"))
			},
			wantCode: apperror.CodeDependency,
		},
		{
			name:    "bad token",
			token:   "garbage",
			setup:   func(s *sessionMocks.MockStore) {},
			wantErr: ErrUnauthenticated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			tt.setup(f.sessions)

			p, err := f.svc.Authenticate(ctx, tt.token)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				assert.True(t, apperror.IsCode(err, tt.wantCode))
			default:
				require.NoError(t, err)
				assert.Equal(t, "user-1", p.UserID)
				assert.Equal(t, issued.JTI, p.SessionID)
			}
		})
	}
}

func TestAuthService_SignOutAndMe(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.sessions.On("Revoke", ctx, "jti-1").Return(nil)
	f.users.On("FindByID", ctx, "user-1").Return(&model.User{ID: "user-1", Email: "owner@acme.test"}, nil)
	f.profiles.On("FindByUserID", ctx, "user-1").Return(&model.Profile{CompanyName: "Acme"}, nil)

	require.NoError(t, f.svc.SignOut(ctx, "jti-1"))
	assert.ErrorIs(t, f.svc.SignOut(ctx, ""), ErrUnauthenticated)

	acct, err := f.svc.Me(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.test", acct.User.Email)
	assert.Equal(t, "Acme", acct.Profile.CompanyName)
}
