package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFulfilled:
		return true
	}
	return false
}

// Order is a customer order header. Orders are never deleted.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	ClientName string      `json:"client_name"`
	OrderDate  time.Time   `json:"order_date"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// OrderSummary is an order row as listed, with its line item count.
type OrderSummary struct {
	Order
	ItemCount int `json:"item_count"`
}

// OrderItem is one immutable line of an order.
type OrderItem struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	SKUID        string          `json:"sku_id"`
	SKUName      string          `json:"sku_name,omitempty"`
	LineNo       int             `json:"line_no"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Subtotal is quantity × unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderTotal sums the subtotals of items.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
