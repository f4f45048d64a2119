package handler

import (
	"github.com/gofiber/fiber/v2"

	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

// Dashboard returns the stock overview and recent orders.
//
// @Summary Dashboard summary
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.DashboardSummary
// @Router /dashboard [get]
func Dashboard(svc service.DashboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sum)
	}
}
