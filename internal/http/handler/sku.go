package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

type skuRequest struct {
	Name              string `json:"sku_name" validate:"max=200"`
	CurrentQuantity   int    `json:"current_quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

func (r skuRequest) input() service.SKUInput {
	return service.SKUInput{
		Name:              r.Name,
		CurrentQuantity:   r.CurrentQuantity,
		LowStockThreshold: r.LowStockThreshold,
	}
}

type skuListResponse struct {
	Items []service.SKUView `json:"items"`
	Total int               `json:"total"`
}

// pathID reads and checks the :id route parameter.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// ListSKUs returns the caller's SKUs, newest first.
//
// @Summary List SKUs
// @Tags skus
// @Security BearerAuth
// @Produce json
// @Param q query string false "name contains (case-insensitive)"
// @Success 200 {object} skuListResponse
// @Router /skus [get]
func ListSKUs(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), middleware.UserID(c), c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		if items == nil {
			items = []service.SKUView{}
		}
		return c.JSON(skuListResponse{Items: items, Total: len(items)})
	}
}

// SKUOptions returns the order form picker entries.
//
// @Summary SKU picker options
// @Tags skus
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.SKUOption
// @Router /skus/options [get]
func SKUOptions(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := svc.Options(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(opts)
	}
}

// GetSKU
//
// @Summary Get SKU
// @Tags skus
// @Security BearerAuth
// @Produce json
// @Param id path string true "SKU id"
// @Success 200 {object} service.SKUView
// @Failure 404 {object} errorPayload
// @Router /skus/{id} [get]
func GetSKU(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		sku, err := svc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sku)
	}
}

// CreateSKU
//
// @Summary Create SKU
// @Tags skus
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body skuRequest true "SKU"
// @Success 201 {object} service.SKUView
// @Failure 400 {object} errorPayload
// @Router /skus [post]
func CreateSKU(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req skuRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		sku, err := svc.Create(c.UserContext(), middleware.UserID(c), req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sku)
	}
}

// UpdateSKU replaces the editable fields of a SKU.
//
// @Summary Update SKU
// @Tags skus
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "SKU id"
// @Param body body skuRequest true "SKU"
// @Success 200 {object} service.SKUView
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /skus/{id} [put]
func UpdateSKU(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		var req skuRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		sku, err := svc.Update(c.UserContext(), middleware.UserID(c), id, req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sku)
	}
}

// DeleteSKU removes a SKU that no order references.
//
// @Summary Delete SKU
// @Tags skus
// @Security BearerAuth
// @Param id path string true "SKU id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /skus/{id} [delete]
func DeleteSKU(svc service.InventoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
