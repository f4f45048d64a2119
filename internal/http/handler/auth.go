package handler

import (
	"github.com/gofiber/fiber/v2"

	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,max=72"`
	CompanyName string `json:"company_name" validate:"required,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates an account with its company profile and opens a session.
//
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param body body signUpRequest true "account"
// @Success 201 {object} service.Session
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /auth/signup [post]
func SignUp(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signUpRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		sess, err := svc.SignUp(c.UserContext(), req.Email, req.Password, req.CompanyName)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Login exchanges credentials for a bearer token.
//
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} service.Session
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		sess, err := svc.SignIn(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sess)
	}
}

// Logout revokes the session the request was made with.
//
// @Summary Log out
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.SignOut(c.UserContext(), middleware.SessionID(c)); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Me returns the current user and profile.
//
// @Summary Current account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Account
// @Router /me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, err := svc.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(acc)
	}
}
