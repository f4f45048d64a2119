package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockflow/internal/apperror"
	"stockflow/internal/http/middleware"
	"stockflow/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// sentinelCodes maps service sentinels onto public error codes.
var sentinelCodes = []struct {
	err  error
	code apperror.Code
}{
	{service.ErrIDRequired, apperror.CodeValidation},
	{service.ErrSKUNotFound, apperror.CodeNotFound},
	{service.ErrOrderNotFound, apperror.CodeNotFound},
	{service.ErrProfileNotFound, apperror.CodeNotFound},
	{service.ErrSKUInUse, apperror.CodeConflict},
	{service.ErrEmailTaken, apperror.CodeConflict},
	{service.ErrInvalidCredentials, apperror.CodeUnauthorized},
	{service.ErrUnauthenticated, apperror.CodeUnauthorized},
}

// respondError translates a service error into the error envelope. Coded
// errors keep their own message; sentinels use their text; anything else is
// reported as an internal error.
func respondError(c *fiber.Ctx, err error) error {
	if ae := apperror.As(err); ae != nil {
		meta := apperror.MetadataFor(ae.Code())
		msg := ae.Message()
		if msg == "" {
			msg = meta.PublicMessage
		}
		var details any
		if meta.DetailsAllowed {
			details = ae.Details()
		}
		return writeErrorDetails(c, meta.HTTPStatus, string(ae.Code()), msg, details)
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			meta := apperror.MetadataFor(s.code)
			return writeError(c, meta.HTTPStatus, string(s.code), s.err.Error())
		}
	}
	return writeError(c, fiber.StatusInternalServerError, string(apperror.CodeInternal), "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return respondError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, string(apperror.CodeUnauthorized), fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, fe.Code, string(apperror.CodeInternal), "internal server error")
		}
	}
}
