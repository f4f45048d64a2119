package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockflow/internal/apperror"
	"stockflow/internal/logger"
	"stockflow/internal/metrics"
	"stockflow/internal/model"
	"stockflow/internal/repository"
	repoMocks "stockflow/internal/repository/mocks"
)

var fixedNow = time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestOrderService(t *testing.T) (*orderService, *repoMocks.MockOrderRepository, *repoMocks.MockSKURepository, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.NewOrders(reg)
	require.NoError(t, err)
	mOrders := new(repoMocks.MockOrderRepository)
	mSKUs := new(repoMocks.MockSKURepository)
	svc := NewOrderService(mOrders, mSKUs, m, logger.Nop()).(*orderService)
	svc.now = func() time.Time { return fixedNow }
	return svc, mOrders, mSKUs, reg
}

var tenantSKUs = []model.SKUOption{
	{ID: "sku-1", Name: "WIDGET", CurrentQuantity: 10},
	{ID: "sku-2", Name: "BOLT", CurrentQuantity: 2},
}

func TestOversellWarnings(t *testing.T) {
	known := map[string]model.SKUOption{
		"sku-1": tenantSKUs[0],
		"sku-2": tenantSKUs[1],
	}
	items := []LineItemInput{
		{SKUID: "sku-1", Quantity: 10},
		{SKUID: "sku-2", Quantity: 5},
		{SKUID: "sku-1", Quantity: 11},
		{SKUID: "missing", Quantity: 99},
	}

	got := OversellWarnings(items, known)
	assert.Equal(t, []string{
		"Line 2: BOLT - Ordering 5 but only 2 available",
		"Line 3: WIDGET - Ordering 11 but only 10 available",
	}, got)
	assert.Nil(t, OversellWarnings(items[:1], known))
}

func TestOrderService_Submit_Validation(t *testing.T) {
	ctx := context.Background()
	line := LineItemInput{SKUID: "sku-1", Quantity: 1, PricePerUnit: price("1.00")}

	tests := []struct {
		name    string
		in      OrderInput
		wantMsg string
	}{
		{"blank client", OrderInput{ClientName: "   ", Items: []LineItemInput{line}}, "please enter a client name"},
		{"no items", OrderInput{ClientName: "Acme"}, "please add at least one line item"},
		{"sku not selected", OrderInput{ClientName: "Acme", Items: []LineItemInput{line, {Quantity: 1}}}, "please select a SKU for all line items"},
		{"zero quantity", OrderInput{ClientName: "Acme", Items: []LineItemInput{{SKUID: "sku-1", Quantity: 0}}}, "quantity must be greater than 0"},
		{"negative price", OrderInput{ClientName: "Acme", Items: []LineItemInput{{SKUID: "sku-1", Quantity: 1, PricePerUnit: price("-0.01")}}}, "price per unit must be 0 or greater"},
		{"bad date", OrderInput{ClientName: "Acme", OrderDate: "19/10/2026", Items: []LineItemInput{line}}, "order date must be formatted as YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mOrders, mSKUs, _ := newTestOrderService(t)

			res, err := svc.Submit(ctx, "user-1", tt.in)
			assert.Nil(t, res)
			require.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
			assert.Equal(t, tt.wantMsg, apperror.As(err).Message())

			mSKUs.AssertNotCalled(t, "ListOptions", mock.Anything, mock.Anything)
			mOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Submit_UnknownSKU(t *testing.T) {
	svc, mOrders, mSKUs, _ := newTestOrderService(t)
	mSKUs.On("ListOptions", mock.Anything, "user-1").Return(tenantSKUs, nil)

	_, err := svc.Submit(context.Background(), "user-1", OrderInput{
		ClientName: "Acme",
		Items: []LineItemInput{
			{SKUID: "sku-1", Quantity: 1},
			{SKUID: "someone-elses", Quantity: 1},
		},
	})
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Equal(t, "line 2: SKU not found", apperror.As(err).Message())
	mOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Submit_OversellDeclinedWritesNothing(t *testing.T) {
	svc, mOrders, mSKUs, _ := newTestOrderService(t)
	mSKUs.On("ListOptions", mock.Anything, "user-1").Return(tenantSKUs, nil)

	_, err := svc.Submit(context.Background(), "user-1", OrderInput{
		ClientName: "Acme",
		Items: []LineItemInput{
			{SKUID: "sku-1", Quantity: 12, PricePerUnit: price("1.00")},
			{SKUID: "sku-2", Quantity: 3, PricePerUnit: price("1.00")},
		},
	})

	appErr := apperror.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperror.CodeOversell, appErr.Code())
	assert.Equal(t, []string{
		"Line 1: WIDGET - Ordering 12 but only 10 available",
		"Line 2: BOLT - Ordering 3 but only 2 available",
	}, appErr.Details())
	mOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mOrders.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything)
	mSKUs.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Submit_Success(t *testing.T) {
	ctx := context.Background()
	stored := &model.Order{ID: "ord-1", UserID: "user-1", ClientName: "Acme", Status: model.OrderStatusPending}

	tests := []struct {
		name         string
		in           OrderInput
		setup        func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository)
		wantWarnings []string
		wantOversell float64
	}{
		{
			name: "repeated sku deducts from the reduced amount",
			in: OrderInput{
				ClientName: "  Acme  ",
				OrderDate:  "2026-10-01",
				Items: []LineItemInput{
					{SKUID: "sku-1", Quantity: 3, PricePerUnit: price("10.00")},
					{SKUID: "sku-1", Quantity: 4, PricePerUnit: price("9.50")},
				},
			},
			setup: func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository) {
				mOrders.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
					return o.ClientName == "Acme" &&
						o.Status == model.OrderStatusPending &&
						o.OrderDate.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
				})).Return(stored, nil).Once()
				mOrders.On("CreateItems", mock.Anything, mock.MatchedBy(func(items []model.OrderItem) bool {
					return len(items) == 2 &&
						items[0].OrderID == "ord-1" && items[0].LineNo == 1 &&
						items[1].LineNo == 2 && items[1].PricePerUnit.Equal(price("9.50"))
				})).Return(nil).Once()
				mSKUs.On("UpdateQuantity", mock.Anything, "user-1", "sku-1", 7, fixedNow).Return(nil).Once()
				mSKUs.On("UpdateQuantity", mock.Anything, "user-1", "sku-1", 3, fixedNow).Return(nil).Once()
			},
			wantWarnings: []string{},
		},
		{
			name: "confirmed oversell clamps to zero",
			in: OrderInput{
				ClientName:      "Acme",
				ConfirmOversell: true,
				Items: []LineItemInput{
					{SKUID: "sku-2", Quantity: 5, PricePerUnit: price("1.00")},
				},
			},
			setup: func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository) {
				mOrders.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
					return o.OrderDate.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
				})).Return(stored, nil).Once()
				mOrders.On("CreateItems", mock.Anything, mock.Anything).Return(nil).Once()
				mSKUs.On("UpdateQuantity", mock.Anything, "user-1", "sku-2", 0, fixedNow).Return(nil).Once()
			},
			wantWarnings: []string{"Line 1: BOLT - Ordering 5 but only 2 available"},
			wantOversell: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mOrders, mSKUs, reg := newTestOrderService(t)
			mSKUs.On("ListOptions", mock.Anything, "user-1").Return(tenantSKUs, nil)
			tt.setup(mOrders, mSKUs)

			res, err := svc.Submit(ctx, "user-1", tt.in)
			require.NoError(t, err)
			assert.Equal(t, "ord-1", res.Order.ID)
			assert.Equal(t, tt.wantWarnings, res.Warnings)

			mOrders.AssertExpectations(t)
			mSKUs.AssertExpectations(t)

			assert.Equal(t, 1.0, counterTotal(t, reg, "stockflow_orders_created_total"))
			assert.Equal(t, tt.wantOversell, counterTotal(t, reg, "stockflow_oversell_lines_total"))
		})
	}
}

func TestOrderService_Submit_PartialFailures(t *testing.T) {
	ctx := context.Background()
	stored := &model.Order{ID: "ord-1", UserID: "user-1", Status: model.OrderStatusPending}
	in := OrderInput{
		ClientName: "Acme",
		Items: []LineItemInput{
			{SKUID: "sku-1", Quantity: 1, PricePerUnit: price("1.00")},
			{SKUID: "sku-2", Quantity: 1, PricePerUnit: price("1.00")},
		},
	}

	tests := []struct {
		name       string
		setup      func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository)
		wantErrMsg string
		wantStep   string
	}{
		{
			name: "order insert fails",
			setup: func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository) {
				mOrders.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			wantErrMsg: "insert order: db down",
			wantStep:   metrics.StepInsertOrder,
		},
		{
			name: "items insert fails after order row",
			setup: func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository) {
				mOrders.On("Create", mock.Anything, mock.Anything).Return(stored, nil)
				mOrders.On("CreateItems", mock.Anything, mock.Anything).Return(repository.ErrReferenced)
			},
			wantErrMsg: "insert order items for order ord-1",
			wantStep:   metrics.StepInsertItems,
		},
		{
			name: "second deduction fails after first succeeded",
			setup: func(mOrders *repoMocks.MockOrderRepository, mSKUs *repoMocks.MockSKURepository) {
				mOrders.On("Create", mock.Anything, mock.Anything).Return(stored, nil)
				mOrders.On("CreateItems", mock.Anything, mock.Anything).Return(nil)
				mSKUs.On("UpdateQuantity", mock.Anything, "user-1", "sku-1", 9, fixedNow).Return(nil).Once()
				mSKUs.On("UpdateQuantity", mock.Anything, "user-1", "sku-2", 1, fixedNow).Return(sql.ErrNoRows).Once()
			},
			wantErrMsg: "deduct stock for line 2 of order ord-1",
			wantStep:   metrics.StepDeductStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mOrders, mSKUs, reg := newTestOrderService(t)
			mSKUs.On("ListOptions", mock.Anything, "user-1").Return(tenantSKUs, nil)
			tt.setup(mOrders, mSKUs)

			res, err := svc.Submit(ctx, "user-1", in)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)

			mOrders.AssertExpectations(t)
			mSKUs.AssertExpectations(t)
			n, err := testutil.GatherAndCount(reg, "stockflow_order_submission_failures_total")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, 1.0, counterTotal(t, reg, "stockflow_order_submission_failures_total"))
		})
	}
}

func TestOrderService_Check(t *testing.T) {
	svc, mOrders, mSKUs, _ := newTestOrderService(t)
	mSKUs.On("ListOptions", mock.Anything, "user-1").Return(tenantSKUs, nil)

	warnings, err := svc.Check(context.Background(), "user-1", OrderInput{
		Items: []LineItemInput{
			{SKUID: "", Quantity: 50},
			{SKUID: "sku-2", Quantity: 3},
			{SKUID: "sku-1", Quantity: -4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Line 2: BOLT - Ordering 3 but only 2 available"}, warnings)
	mOrders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	mSKUs2 := new(repoMocks.MockSKURepository)
	svc.skus = mSKUs2
	mSKUs2.On("ListOptions", mock.Anything, "user-1").Return(nil, errors.New("timeout"))
	_, err = svc.Check(context.Background(), "user-1", OrderInput{})
	assert.EqualError(t, err, "load skus: timeout")
}

func TestOrderService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("total from items", func(t *testing.T) {
		svc, mOrders, _, _ := newTestOrderService(t)
		mOrders.On("FindByID", ctx, "user-1", "ord-1").Return(&model.Order{ID: "ord-1"}, nil)
		mOrders.On("ListItems", ctx, "ord-1").Return([]model.OrderItem{
			{LineNo: 1, Quantity: 2, PricePerUnit: price("10.00")},
			{LineNo: 2, Quantity: 3, PricePerUnit: price("5.50")},
		}, nil)

		d, err := svc.Get(ctx, "user-1", "ord-1")
		require.NoError(t, err)
		assert.Equal(t, "36.50", d.Total)
		assert.Equal(t, "20.00", d.Items[0].Subtotal)
		assert.Equal(t, "16.50", d.Items[1].Subtotal)
	})

	t.Run("other tenant", func(t *testing.T) {
		svc, mOrders, _, _ := newTestOrderService(t)
		mOrders.On("FindByID", ctx, "user-2", "ord-1").Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, "user-2", "ord-1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("id required", func(t *testing.T) {
		svc, _, _, _ := newTestOrderService(t)
		_, err := svc.Get(ctx, "user-1", "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestOrderService_MarkFulfilled(t *testing.T) {
	ctx := context.Background()

	t.Run("pending becomes fulfilled", func(t *testing.T) {
		svc, mOrders, _, _ := newTestOrderService(t)
		mOrders.On("FindByID", ctx, "user-1", "ord-1").Return(&model.Order{ID: "ord-1", Status: model.OrderStatusPending}, nil)
		mOrders.On("UpdateStatus", ctx, "user-1", "ord-1", model.OrderStatusFulfilled, fixedNow).
			Return(&model.Order{ID: "ord-1", Status: model.OrderStatusFulfilled}, nil)

		o, err := svc.MarkFulfilled(ctx, "user-1", "ord-1")
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusFulfilled, o.Status)
	})

	t.Run("already fulfilled is a no-op", func(t *testing.T) {
		svc, mOrders, _, _ := newTestOrderService(t)
		mOrders.On("FindByID", ctx, "user-1", "ord-1").Return(&model.Order{ID: "ord-1", Status: model.OrderStatusFulfilled}, nil)

		o, err := svc.MarkFulfilled(ctx, "user-1", "ord-1")
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusFulfilled, o.Status)
		mOrders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		svc, mOrders, _, _ := newTestOrderService(t)
		mOrders.On("FindByID", ctx, "user-1", "nope").Return(nil, sql.ErrNoRows)

		_, err := svc.MarkFulfilled(ctx, "user-1", "nope")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	svc, mOrders, _, _ := newTestOrderService(t)
	ctx := context.Background()
	mOrders.On("List", ctx, "user-1", repository.PageQuery{}).Return(&repository.PageResult[model.OrderSummary]{
		Items: []model.OrderSummary{{Order: model.Order{ID: "ord-1"}, ItemCount: 2}},
		Total: 1,
	}, nil)

	got, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ItemCount)
}

func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}
