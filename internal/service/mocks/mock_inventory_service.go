package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stockflow/internal/model"
	"stockflow/internal/service"
)

type MockInventoryService struct {
	mock.Mock
}

var _ service.InventoryService = (*MockInventoryService)(nil)

func (m *MockInventoryService) List(ctx context.Context, userID, search string) ([]service.SKUView, error) {
	args := m.Called(ctx, userID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SKUView), args.Error(1)
}

func (m *MockInventoryService) Options(ctx context.Context, userID string) ([]model.SKUOption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SKUOption), args.Error(1)
}

func (m *MockInventoryService) Get(ctx context.Context, userID, id string) (*service.SKUView, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SKUView), args.Error(1)
}

func (m *MockInventoryService) Create(ctx context.Context, userID string, in service.SKUInput) (*service.SKUView, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SKUView), args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, userID, id string, in service.SKUInput) (*service.SKUView, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SKUView), args.Error(1)
}

func (m *MockInventoryService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
