package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockflow/internal/model"
)

func TestWrite_Orders(t *testing.T) {
	orders := []model.OrderSummary{
		{
			Order: model.Order{
				ID:         "3f2b9c1e-aaaa-bbbb-cccc-000000000001",
				ClientName: "Acme, Inc.",
				OrderDate:  time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
				Status:     model.OrderStatusPending,
			},
			ItemCount: 3,
		},
		{
			Order: model.Order{
				ID:         "short",
				ClientName: "Bolt Co",
				OrderDate:  time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
				Status:     model.OrderStatusFulfilled,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OrderColumns, orders))

	want := "Order ID,Client Name,Order Date,Number of Items,Status\n" +
		"3f2b9c1e,\"Acme, Inc.\",\"Mar 07, 2026\",3,pending\n" +
		"short,Bolt Co,\"Oct 19, 2026\",0,fulfilled\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_Inventory(t *testing.T) {
	skus := []model.SKU{
		{Name: "WIDGET", CurrentQuantity: 5, LowStockThreshold: 10},
		{Name: "BOLT", CurrentQuantity: 0, LowStockThreshold: 10},
		{Name: "NUT", CurrentQuantity: 20, LowStockThreshold: 10},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, InventoryColumns, skus))

	want := "SKU Name,Current Quantity,Low Stock Threshold,Status\n" +
		"WIDGET,5,10,Low Stock\n" +
		"BOLT,0,10,Out of Stock\n" +
		"NUT,20,10,In Stock\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, InventoryColumns, nil))
	assert.Equal(t, "SKU Name,Current Quantity,Low Stock Threshold,Status\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, InventoryColumns, []model.SKU{{Name: "A"}})
	assert.EqualError(t, err, "disk full")
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "orders-2026-10-19.csv", FileName(ViewOrders, day))
	assert.Equal(t, "inventory-2026-10-19.csv", FileName(ViewInventory, day))
}
