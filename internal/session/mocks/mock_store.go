package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"stockflow/internal/session"
)

type MockStore struct {
	mock.Mock
}

var _ session.Store = (*MockStore)(nil)

func (m *MockStore) Create(ctx context.Context, jti, userID string, ttl time.Duration) error {
	args := m.Called(ctx, jti, userID, ttl)
	return args.Error(0)
}

func (m *MockStore) Lookup(ctx context.Context, jti string) (string, bool, error) {
	args := m.Called(ctx, jti)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Revoke(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
