package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stockflow/internal/model"
	"stockflow/internal/repository"
	"stockflow/internal/stock"
)

const (
	recentOrdersLimit = 5
	weekWindow        = 7 * 24 * time.Hour
)

// DashboardSummary is the landing page overview of a tenant.
type DashboardSummary struct {
	TotalSKUs       int                  `json:"total_skus"`
	LowStockCount   int                  `json:"low_stock_count"`
	OutOfStockCount int                  `json:"out_of_stock_count"`
	OrdersThisWeek  int                  `json:"orders_this_week"`
	LowStockItems   []SKUView            `json:"low_stock_items"`
	RecentOrders    []model.OrderSummary `json:"recent_orders"`
}

type DashboardService interface {
	Summary(ctx context.Context, userID string) (*DashboardSummary, error)
}

type dashboardService struct {
	skus   repository.SKURepository
	orders repository.OrderRepository
	now    func() time.Time
}

func NewDashboardService(skus repository.SKURepository, orders repository.OrderRepository) DashboardService {
	return &dashboardService{skus: skus, orders: orders, now: time.Now}
}

func (s *dashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	var (
		skus   []model.SKU
		weekly int
		recent *repository.PageResult[model.OrderSummary]
	)
	since := s.now().UTC().Add(-weekWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		skus, err = s.skus.List(gctx, userID, "")
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = s.orders.CountSince(gctx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.orders.List(gctx, userID, repository.PageQuery{Limit: recentOrdersLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &DashboardSummary{
		TotalSKUs:      len(skus),
		OrdersThisWeek: weekly,
		LowStockItems:  []SKUView{},
		RecentOrders:   recent.Items,
	}
	for _, sku := range skus {
		switch stock.Classify(sku.CurrentQuantity, sku.LowStockThreshold) {
		case stock.LowStock:
			out.LowStockCount++
			out.LowStockItems = append(out.LowStockItems, newSKUView(sku))
		case stock.OutOfStock:
			out.OutOfStockCount++
		}
	}
	return out, nil
}
