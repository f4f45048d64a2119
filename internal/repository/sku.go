package repository

import (
	"context"
	"time"

	"stockflow/internal/model"
)

// SKURepository defines data access for SKUs using SQL queries only.
type SKURepository interface {
	// Create inserts a new SKU and returns the stored row.
	Create(ctx context.Context, sku *model.SKU) (*model.SKU, error)

	// FindByID returns a tenant's SKU. sql.ErrNoRows when absent or owned by another tenant.
	FindByID(ctx context.Context, userID, id string) (*model.SKU, error)

	// List returns a tenant's SKUs, newest first. A non-empty search filters
	// sku_name by case-insensitive substring.
	List(ctx context.Context, userID, search string) ([]model.SKU, error)

	// ListOptions returns id, name and quantity for every tenant SKU ordered by name.
	ListOptions(ctx context.Context, userID string) ([]model.SKUOption, error)

	// Update overwrites name, quantity and threshold. sql.ErrNoRows when nothing matched.
	Update(ctx context.Context, sku *model.SKU) (*model.SKU, error)

	// UpdateQuantity writes a new on-hand quantity. sql.ErrNoRows when nothing matched.
	UpdateQuantity(ctx context.Context, userID, id string, quantity int, at time.Time) error

	// Delete removes a tenant's SKU. sql.ErrNoRows when nothing matched,
	// ErrReferenced when order items still point at it.
	Delete(ctx context.Context, userID, id string) error
}
