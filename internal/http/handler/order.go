package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"stockflow/internal/apperror"
	"stockflow/internal/http/middleware"
	"stockflow/internal/model"
	"stockflow/internal/service"
)

type lineItemRequest struct {
	SKUID        string          `json:"sku_id"`
	Quantity     int             `json:"quantity" validate:"lte=2147483647"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" swaggertype:"string" example:"12.50"`
}

type orderRequest struct {
	ClientName      string            `json:"client_name" validate:"max=200"`
	OrderDate       string            `json:"order_date" example:"2026-10-19"`
	Items           []lineItemRequest `json:"items" validate:"max=200,dive"`
	ConfirmOversell bool              `json:"confirm_oversell"`
}

// maxPrice bounds price_per_unit to what a NUMERIC(12,2) column holds.
var maxPrice = decimal.New(1, 10)

// checkPrices rejects prices the order_items column cannot store exactly.
func (r orderRequest) checkPrices() error {
	details := map[string]string{}
	for i, it := range r.Items {
		field := fmt.Sprintf("items[%d].price_per_unit", i)
		switch {
		case !it.PricePerUnit.Equal(it.PricePerUnit.Round(2)):
			details[field] = "must have at most 2 decimal places"
		case it.PricePerUnit.Abs().GreaterThanOrEqual(maxPrice):
			details[field] = "must be less than 10000000000"
		}
	}
	if len(details) > 0 {
		return apperror.Validation("invalid request").WithDetails(details)
	}
	return nil
}

// bindOrder decodes and validates an order body.
func bindOrder(c *fiber.Ctx) (orderRequest, error) {
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		return req, err
	}
	return req, req.checkPrices()
}

func (r orderRequest) input() service.OrderInput {
	items := make([]service.LineItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.LineItemInput{
			SKUID:        it.SKUID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	return service.OrderInput{
		ClientName:      r.ClientName,
		OrderDate:       r.OrderDate,
		Items:           items,
		ConfirmOversell: r.ConfirmOversell,
	}
}

type orderListResponse struct {
	Items []model.OrderSummary `json:"items"`
	Total int                  `json:"total"`
}

type checkResponse struct {
	Warnings []string `json:"warnings"`
}

// ListOrders returns the caller's orders, newest first.
//
// @Summary List orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} orderListResponse
// @Router /orders [get]
func ListOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if items == nil {
			items = []model.OrderSummary{}
		}
		return c.JSON(orderListResponse{Items: items, Total: len(items)})
	}
}

// CheckOrder previews the oversell warnings for a draft order. Nothing is written.
//
// @Summary Check order for oversell
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body orderRequest true "draft order"
// @Success 200 {object} checkResponse
// @Router /orders/check [post]
func CheckOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindOrder(c)
		if err != nil {
			return respondError(c, err)
		}
		warnings, err := svc.Check(c.UserContext(), middleware.UserID(c), req.input())
		if err != nil {
			return respondError(c, err)
		}
		if warnings == nil {
			warnings = []string{}
		}
		return c.JSON(checkResponse{Warnings: warnings})
	}
}

// CreateOrder submits an order and deducts stock for each line.
//
// Ordering more than is on hand is rejected with 409 OVERSELL_UNCONFIRMED and
// the warnings as details until the request sets confirm_oversell.
//
// @Summary Create order
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body orderRequest true "order"
// @Success 201 {object} service.SubmitResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /orders [post]
func CreateOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindOrder(c)
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.Submit(c.UserContext(), middleware.UserID(c), req.input())
		if err != nil {
			return respondError(c, err)
		}
		if res.Warnings == nil {
			res.Warnings = []string{}
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetOrder returns an order with its lines, subtotals and total.
//
// @Summary Get order
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} service.OrderDetail
// @Failure 404 {object} errorPayload
// @Router /orders/{id} [get]
func GetOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		detail, err := svc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(detail)
	}
}

// FulfillOrder marks an order fulfilled. There is no way back to pending.
//
// @Summary Mark order fulfilled
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} model.Order
// @Failure 404 {object} errorPayload
// @Router /orders/{id}/fulfill [post]
func FulfillOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		order, err := svc.MarkFulfilled(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(order)
	}
}
