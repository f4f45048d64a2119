package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockflow/internal/service"
	serviceMocks "stockflow/internal/service/mocks"
)

func newAuthApp(authn Authenticator) *fiber.App {
	app := fiber.New()
	app.Use(RequireAuth(authn, nil))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c) + "|" + SessionID(c))
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		svc := new(serviceMocks.MockAuthService)
		app := newAuthApp(svc)

		resp, _ := app.Test(httptest.NewRequest("GET", "/me", nil))

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		svc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		svc := new(serviceMocks.MockAuthService)
		app := newAuthApp(svc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked session", func(t *testing.T) {
		svc := new(serviceMocks.MockAuthService)
		svc.On("Authenticate", mock.Anything, "tok").Return(nil, service.ErrUnauthenticated).Once()
		app := newAuthApp(svc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("store failure is not a 401", func(t *testing.T) {
		svc := new(serviceMocks.MockAuthService)
		svc.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("redis down")).Once()
		app := newAuthApp(svc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("valid session", func(t *testing.T) {
		svc := new(serviceMocks.MockAuthService)
		svc.On("Authenticate", mock.Anything, "tok").
			Return(&service.Principal{UserID: "user-1", SessionID: "jti-1"}, nil).Once()
		app := newAuthApp(svc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		assert.Equal(t, "user-1|jti-1", string(body[:n]))
		svc.AssertExpectations(t)
	})
}
