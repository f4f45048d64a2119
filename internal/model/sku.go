package model

import "time"

// SKU is a stock-keeping unit owned by a single tenant.
type SKU struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"sku_name"`
	CurrentQuantity   int       `json:"current_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SKUOption is the reduced projection used by the order form picker
// and by the oversell check.
type SKUOption struct {
	ID              string `json:"id"`
	Name            string `json:"sku_name"`
	CurrentQuantity int    `json:"current_quantity"`
}
