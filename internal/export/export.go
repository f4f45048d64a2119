// Package export renders tenant views as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"stockflow/internal/model"
	"stockflow/internal/stock"
)

const (
	ViewOrders    = "orders"
	ViewInventory = "inventory"

	ContentType = "text/csv; charset=utf-8"
)

// Column renders one CSV column from a record.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Write emits a header row followed by one row per record.
func Write[T any](w io.Writer, cols []Column[T], rows []T) error {
	cw := csv.NewWriter(w)
	record := make([]string, len(cols))
	for i, c := range cols {
		record[i] = c.Header
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for n, row := range rows {
		for i, c := range cols {
			record[i] = c.Value(row)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", n+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the attachment name for a view exported on day.
func FileName(view string, day time.Time) string {
	return fmt.Sprintf("%s-%s.csv", view, day.Format("2006-01-02"))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

var OrderColumns = []Column[model.OrderSummary]{
	{Header: "Order ID", Value: func(o model.OrderSummary) string { return shortID(o.ID) }},
	{Header: "Client Name", Value: func(o model.OrderSummary) string { return o.ClientName }},
	{Header: "Order Date", Value: func(o model.OrderSummary) string { return o.OrderDate.Format("Jan 02, 2006") }},
	{Header: "Number of Items", Value: func(o model.OrderSummary) string { return strconv.Itoa(o.ItemCount) }},
	{Header: "Status", Value: func(o model.OrderSummary) string { return string(o.Status) }},
}

var InventoryColumns = []Column[model.SKU]{
	{Header: "SKU Name", Value: func(s model.SKU) string { return s.Name }},
	{Header: "Current Quantity", Value: func(s model.SKU) string { return strconv.Itoa(s.CurrentQuantity) }},
	{Header: "Low Stock Threshold", Value: func(s model.SKU) string { return strconv.Itoa(s.LowStockThreshold) }},
	{Header: "Status", Value: func(s model.SKU) string {
		return string(stock.Classify(s.CurrentQuantity, s.LowStockThreshold))
	}},
}
