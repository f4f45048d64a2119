package handler

import (
	"github.com/gofiber/fiber/v2"

	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

type profileRequest struct {
	CompanyName string `json:"company_name" validate:"max=200"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"max=72"`
	ConfirmPassword string `json:"confirm_password"`
}

// GetProfile
//
// @Summary Get company profile
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.Profile
// @Router /settings/profile [get]
func GetProfile(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetProfile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProfile renames the company.
//
// @Summary Update company profile
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body profileRequest true "profile"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errorPayload
// @Router /settings/profile [put]
func UpdateProfile(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req profileRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		p, err := svc.UpdateCompanyName(c.UserContext(), middleware.UserID(c), req.CompanyName)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// ChangePassword
//
// @Summary Change password
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Param body body passwordRequest true "password change"
// @Success 204
// @Failure 400 {object} errorPayload
// @Router /settings/password [put]
func ChangePassword(svc service.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req passwordRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		err := svc.ChangePassword(c.UserContext(), middleware.UserID(c), service.PasswordChange{
			Current: req.CurrentPassword,
			New:     req.NewPassword,
			Confirm: req.ConfirmPassword,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
