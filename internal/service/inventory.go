// Package service implements the inventory, order, account and export use cases.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockflow/internal/apperror"
	"stockflow/internal/model"
	"stockflow/internal/repository"
	"stockflow/internal/stock"
)

// SKUInput is the editable part of a SKU.
type SKUInput struct {
	Name              string
	CurrentQuantity   int
	LowStockThreshold int
}

// SKUView is a SKU with its derived stock status.
type SKUView struct {
	model.SKU
	Status  stock.Status  `json:"status"`
	Variant stock.Variant `json:"variant"`
}

func newSKUView(s model.SKU) SKUView {
	status := stock.Classify(s.CurrentQuantity, s.LowStockThreshold)
	return SKUView{SKU: s, Status: status, Variant: status.Variant()}
}

// InventoryService manages a tenant's SKUs.
type InventoryService interface {
	// List returns SKUs newest first, optionally filtered by a name substring.
	List(ctx context.Context, userID, search string) ([]SKUView, error)
	// Options returns the order-form picker entries ordered by name.
	Options(ctx context.Context, userID string) ([]model.SKUOption, error)
	Get(ctx context.Context, userID, id string) (*SKUView, error)
	Create(ctx context.Context, userID string, in SKUInput) (*SKUView, error)
	Update(ctx context.Context, userID, id string, in SKUInput) (*SKUView, error)
	// Delete fails with ErrSKUInUse while order items reference the SKU.
	Delete(ctx context.Context, userID, id string) error
}

type inventoryService struct {
	skus repository.SKURepository
	now  func() time.Time
}

func NewInventoryService(skus repository.SKURepository) InventoryService {
	return &inventoryService{skus: skus, now: time.Now}
}

func (in SKUInput) normalize() (SKUInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, apperror.Validation("SKU name is required")
	}
	if in.CurrentQuantity < 0 {
		return in, apperror.Validation("current quantity must be 0 or greater")
	}
	if in.LowStockThreshold < 0 {
		return in, apperror.Validation("low stock threshold must be 0 or greater")
	}
	return in, nil
}

func (s *inventoryService) List(ctx context.Context, userID, search string) ([]SKUView, error) {
	skus, err := s.skus.List(ctx, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	out := make([]SKUView, 0, len(skus))
	for _, sku := range skus {
		out = append(out, newSKUView(sku))
	}
	return out, nil
}

func (s *inventoryService) Options(ctx context.Context, userID string) ([]model.SKUOption, error) {
	return s.skus.ListOptions(ctx, userID)
}

func (s *inventoryService) Get(ctx context.Context, userID, id string) (*SKUView, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sku, err := s.skus.FindByID(ctx, userID, id)
	if err != nil {
		return nil, skuErr(err)
	}
	view := newSKUView(*sku)
	return &view, nil
}

func (s *inventoryService) Create(ctx context.Context, userID string, in SKUInput) (*SKUView, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	stored, err := s.skus.Create(ctx, &model.SKU{
		ID:                uuid.NewString(),
		UserID:            userID,
		Name:              in.Name,
		CurrentQuantity:   in.CurrentQuantity,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}
	view := newSKUView(*stored)
	return &view, nil
}

func (s *inventoryService) Update(ctx context.Context, userID, id string, in SKUInput) (*SKUView, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	stored, err := s.skus.Update(ctx, &model.SKU{
		ID:                id,
		UserID:            userID,
		Name:              in.Name,
		CurrentQuantity:   in.CurrentQuantity,
		LowStockThreshold: in.LowStockThreshold,
		UpdatedAt:         s.now().UTC(),
	})
	if err != nil {
		return nil, skuErr(err)
	}
	view := newSKUView(*stored)
	return &view, nil
}

func (s *inventoryService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return skuErr(s.skus.Delete(ctx, userID, id))
}

func skuErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrSKUNotFound
	case errors.Is(err, repository.ErrReferenced):
		return ErrSKUInUse
	}
	return err
}
