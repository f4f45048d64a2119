package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockflow/internal/apperror"
	"stockflow/internal/logger"
	"stockflow/internal/metrics"
	"stockflow/internal/model"
	"stockflow/internal/repository"
)

const orderDateLayout = "2006-01-02"

var tracer = otel.Tracer("stockflow/internal/service")

// failStep marks the submission span failed at the given write step.
func failStep(span trace.Span, step string, err error) {
	span.RecordError(err, trace.WithAttributes(attribute.String("step", step)))
	span.SetStatus(codes.Error, step+" failed")
}

// LineItemInput is one line of the order form.
type LineItemInput struct {
	SKUID        string
	Quantity     int
	PricePerUnit decimal.Decimal
}

// OrderInput is a submitted order form. An empty OrderDate means today (UTC).
type OrderInput struct {
	ClientName      string
	OrderDate       string
	Items           []LineItemInput
	ConfirmOversell bool
}

// SubmitResult is the created order plus any oversell warnings the caller confirmed.
type SubmitResult struct {
	Order    *model.Order `json:"order"`
	Warnings []string     `json:"warnings"`
}

// OrderLine is an order item with its rendered subtotal.
type OrderLine struct {
	model.OrderItem
	Subtotal string `json:"subtotal"`
}

// OrderDetail is an order with its items and total.
type OrderDetail struct {
	model.Order
	Items []OrderLine `json:"items"`
	Total string      `json:"total"`
}

// OrderService handles order submission and the order lifecycle.
type OrderService interface {
	// Check returns the oversell warnings for the lines that already name a
	// SKU and a positive quantity. It never writes.
	Check(ctx context.Context, userID string, in OrderInput) ([]string, error)
	// Submit validates the form, rejects unconfirmed oversell, then writes the
	// order, its items and the stock deductions in that order. Writes are not
	// atomic: a failing step leaves the earlier ones in place.
	Submit(ctx context.Context, userID string, in OrderInput) (*SubmitResult, error)
	List(ctx context.Context, userID string) ([]model.OrderSummary, error)
	Get(ctx context.Context, userID, id string) (*OrderDetail, error)
	// MarkFulfilled is idempotent. There is no way back to pending.
	MarkFulfilled(ctx context.Context, userID, id string) (*model.Order, error)
}

type orderService struct {
	orders  repository.OrderRepository
	skus    repository.SKURepository
	metrics *metrics.Orders
	log     *logger.Logger
	now     func() time.Time
}

func NewOrderService(orders repository.OrderRepository, skus repository.SKURepository, m *metrics.Orders, log *logger.Logger) OrderService {
	if log == nil {
		log = logger.Nop()
	}
	return &orderService{orders: orders, skus: skus, metrics: m, log: log, now: time.Now}
}

// OversellWarnings lists every line ordering more than the known quantity of
// its SKU. Lines are numbered from 1 and compared independently.
func OversellWarnings(items []LineItemInput, known map[string]model.SKUOption) []string {
	var warnings []string
	for i, it := range items {
		opt, ok := known[it.SKUID]
		if !ok || it.Quantity <= opt.CurrentQuantity {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("Line %d: %s - Ordering %d but only %d available",
			i+1, opt.Name, it.Quantity, opt.CurrentQuantity))
	}
	return warnings
}

func validateOrder(in OrderInput) (string, error) {
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		return "", apperror.Validation("please enter a client name")
	}
	if len(in.Items) == 0 {
		return "", apperror.Validation("please add at least one line item")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.SKUID) == "" {
			return "", apperror.Validation("please select a SKU for all line items")
		}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return "", apperror.Validation("quantity must be greater than 0")
		}
	}
	for _, it := range in.Items {
		if it.PricePerUnit.IsNegative() {
			return "", apperror.Validation("price per unit must be 0 or greater")
		}
	}
	return client, nil
}

func (s *orderService) orderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := s.now().UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(orderDateLayout, raw)
	if err != nil {
		return time.Time{}, apperror.Validation("order date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

func (s *orderService) knownSKUs(ctx context.Context, userID string) (map[string]model.SKUOption, error) {
	opts, err := s.skus.ListOptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load skus: %w", err)
	}
	known := make(map[string]model.SKUOption, len(opts))
	for _, o := range opts {
		known[o.ID] = o
	}
	return known, nil
}

func (s *orderService) Check(ctx context.Context, userID string, in OrderInput) ([]string, error) {
	known, err := s.knownSKUs(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]LineItemInput, len(in.Items))
	for i, it := range in.Items {
		if it.Quantity > 0 {
			lines[i] = it
		}
	}
	warnings := OversellWarnings(lines, known)
	if warnings == nil {
		warnings = []string{}
	}
	return warnings, nil
}

func (s *orderService) Submit(ctx context.Context, userID string, in OrderInput) (*SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "order.submit", trace.WithAttributes(attribute.Int("order.lines", len(in.Items))))
	defer span.End()

	client, err := validateOrder(in)
	if err != nil {
		return nil, err
	}
	orderDate, err := s.orderDate(in.OrderDate)
	if err != nil {
		return nil, err
	}

	known, err := s.knownSKUs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i, it := range in.Items {
		if _, ok := known[it.SKUID]; !ok {
			return nil, apperror.Validation(fmt.Sprintf("line %d: SKU not found", i+1))
		}
	}

	warnings := OversellWarnings(in.Items, known)
	if len(warnings) > 0 && !in.ConfirmOversell {
		return nil, apperror.New(apperror.CodeOversell, "ordering more than available stock").WithDetails(warnings)
	}

	now := s.now().UTC()
	order, err := s.orders.Create(ctx, &model.Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClientName: client,
		OrderDate:  orderDate,
		Status:     model.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		s.metrics.SubmissionFailed(metrics.StepInsertOrder)
		failStep(span, metrics.StepInsertOrder, err)
		return nil, fmt.Errorf("insert order: %w", err)
	}
	s.metrics.OrderCreated()
	s.metrics.OversellLines(len(warnings))
	ctx = s.log.WithField(ctx, "order_id", order.ID)
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int("order.oversell_lines", len(warnings)))

	items := make([]model.OrderItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = model.OrderItem{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			SKUID:        it.SKUID,
			LineNo:       i + 1,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
			CreatedAt:    now,
		}
	}
	if err := s.orders.CreateItems(ctx, items); err != nil {
		s.metrics.SubmissionFailed(metrics.StepInsertItems)
		failStep(span, metrics.StepInsertItems, err)
		s.log.Error(ctx, "order items insert failed after order was created", err)
		return nil, fmt.Errorf("insert order items for order %s: %w", order.ID, err)
	}

	cached := make(map[string]int, len(known))
	for id, opt := range known {
		cached[id] = opt.CurrentQuantity
	}
	for _, it := range items {
		remaining := max(0, cached[it.SKUID]-it.Quantity)
		if err := s.skus.UpdateQuantity(ctx, userID, it.SKUID, remaining, s.now().UTC()); err != nil {
			s.metrics.SubmissionFailed(metrics.StepDeductStock)
			failStep(span, metrics.StepDeductStock, err)
			s.log.Error(s.log.WithField(ctx, "line_no", it.LineNo), "stock deduction failed after order was created", err)
			return nil, fmt.Errorf("deduct stock for line %d of order %s: %w", it.LineNo, order.ID, err)
		}
		cached[it.SKUID] = remaining
		s.metrics.StockDeducted()
	}

	if warnings == nil {
		warnings = []string{}
	}
	return &SubmitResult{Order: order, Warnings: warnings}, nil
}

func (s *orderService) List(ctx context.Context, userID string) ([]model.OrderSummary, error) {
	res, err := s.orders.List(ctx, userID, repository.PageQuery{})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *orderService) Get(ctx context.Context, userID, id string) (*OrderDetail, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	order, err := s.orders.FindByID(ctx, userID, id)
	if err != nil {
		return nil, orderErr(err)
	}
	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLine, len(items))
	for i, it := range items {
		lines[i] = OrderLine{OrderItem: it, Subtotal: it.Subtotal().StringFixed(2)}
	}
	return &OrderDetail{
		Order: *order,
		Items: lines,
		Total: model.OrderTotal(items).StringFixed(2),
	}, nil
}

func (s *orderService) MarkFulfilled(ctx context.Context, userID, id string) (*model.Order, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	order, err := s.orders.FindByID(ctx, userID, id)
	if err != nil {
		return nil, orderErr(err)
	}
	if order.Status == model.OrderStatusFulfilled {
		return order, nil
	}
	updated, err := s.orders.UpdateStatus(ctx, userID, id, model.OrderStatusFulfilled, s.now().UTC())
	if err != nil {
		return nil, orderErr(err)
	}
	return updated, nil
}

func orderErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	return err
}
