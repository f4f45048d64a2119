package repository

import (
	"context"
	"time"

	"stockflow/internal/model"
)

// OrderRepository defines data access for orders and their line items.
type OrderRepository interface {
	// Create inserts an order header and returns the stored row.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)

	// CreateItems inserts all line items of an order in one statement.
	CreateItems(ctx context.Context, items []model.OrderItem) error

	// FindByID returns a tenant's order. sql.ErrNoRows when absent.
	FindByID(ctx context.Context, userID, id string) (*model.Order, error)

	// ListItems returns the items of an order joined with their SKU names.
	ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error)

	// List returns a tenant's orders by order date, newest first, with item counts.
	List(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.OrderSummary], error)

	// CountSince counts a tenant's orders dated on or after since.
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)

	// UpdateStatus sets the status of a tenant's order. sql.ErrNoRows when absent.
	UpdateStatus(ctx context.Context, userID, id string, status model.OrderStatus, at time.Time) (*model.Order, error)
}
