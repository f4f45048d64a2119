package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockflow/internal/auth"
	"stockflow/internal/logger"
	"stockflow/internal/service"
)

const (
	userIDLocalKey    = "user_id"
	sessionIDLocalKey = "session_id"
)

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

// RequireAuth rejects requests without a live session. On success the user
// and session ids are stored in locals and the user id is added to the
// request logger.
func RequireAuth(authn Authenticator, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		p, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return err
		}

		c.Locals(userIDLocalKey, p.UserID)
		c.Locals(sessionIDLocalKey, p.SessionID)
		c.SetUserContext(log.WithUserID(c.UserContext(), p.UserID))
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside RequireAuth.
func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals(userIDLocalKey).(string)
	return v
}

// SessionID returns the id of the session the request was made with.
func SessionID(c *fiber.Ctx) string {
	v, _ := c.Locals(sessionIDLocalKey).(string)
	return v
}
