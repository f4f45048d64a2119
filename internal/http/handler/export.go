package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

type renderFunc func(ctx context.Context, userID string) (*service.ExportFile, error)

// sendExport streams f as an attachment, or with ?archive=true uploads it and
// returns a presigned download link instead.
func sendExport(c *fiber.Ctx, svc service.ExportService, render renderFunc) error {
	userID := middleware.UserID(c)
	f, err := render(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if c.QueryBool("archive") {
		res, err := svc.Archive(c.UserContext(), userID, f)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	return c.Send(f.Data)
}

// ExportSKUs downloads the inventory as CSV.
//
// @Summary Export inventory CSV
// @Tags skus
// @Security BearerAuth
// @Produce text/csv
// @Param archive query bool false "store in object storage and return a link"
// @Success 200 {file} file
// @Success 201 {object} service.ArchiveResult
// @Failure 503 {object} errorPayload
// @Router /skus/export [get]
func ExportSKUs(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return sendExport(c, svc, svc.Inventory)
	}
}

// ExportOrders downloads the order list as CSV.
//
// @Summary Export orders CSV
// @Tags orders
// @Security BearerAuth
// @Produce text/csv
// @Param archive query bool false "store in object storage and return a link"
// @Success 200 {file} file
// @Success 201 {object} service.ArchiveResult
// @Failure 503 {object} errorPayload
// @Router /orders/export [get]
func ExportOrders(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return sendExport(c, svc, svc.Orders)
	}
}
