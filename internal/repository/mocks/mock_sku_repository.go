package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"stockflow/internal/model"
	"stockflow/internal/repository"
)

type MockSKURepository struct {
	mock.Mock
}

var _ repository.SKURepository = (*MockSKURepository)(nil)

func (m *MockSKURepository) Create(ctx context.Context, sku *model.SKU) (*model.SKU, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SKU), args.Error(1)
}

func (m *MockSKURepository) FindByID(ctx context.Context, userID, id string) (*model.SKU, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SKU), args.Error(1)
}

func (m *MockSKURepository) List(ctx context.Context, userID, search string) ([]model.SKU, error) {
	args := m.Called(ctx, userID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SKU), args.Error(1)
}

func (m *MockSKURepository) ListOptions(ctx context.Context, userID string) ([]model.SKUOption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SKUOption), args.Error(1)
}

func (m *MockSKURepository) Update(ctx context.Context, sku *model.SKU) (*model.SKU, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SKU), args.Error(1)
}

func (m *MockSKURepository) UpdateQuantity(ctx context.Context, userID, id string, quantity int, at time.Time) error {
	args := m.Called(ctx, userID, id, quantity, at)
	return args.Error(0)
}

func (m *MockSKURepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
