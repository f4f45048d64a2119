package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"stockflow/internal/logger"
)

// Logger logs one line per request through the application logger and puts a
// request-scoped child logger (request_id) into the user context so services
// log with the same id.
//
// Fields: request_id, method, path, status, latency (milliseconds). Handler
// errors are rendered here through the app error handler.
func Logger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		ctx := c.UserContext()
		if rid != "" {
			ctx = log.WithRequestID(ctx, rid)
			c.SetUserContext(ctx)
		}

		flushError(c, c.Next())

		log.Event(c.UserContext()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Msg("http_request")
		return nil
	}
}

// LoggerWithWriter writes the request line as a standalone JSON object to w,
// stamping ts in loc. Used where no application logger is wired.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	if loc == nil {
		loc = time.UTC
	}
	zl := zerolog.New(w)
	return func(c *fiber.Ctx) error {
		start := time.Now()
		flushError(c, c.Next())

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		zl.Log().
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Float64("latency", float64(time.Since(start).Microseconds())/1000).
			Str("ts", time.Now().In(loc).Format(time.RFC3339Nano)).
			Send()
		return nil
	}
}

// flushError runs the app error handler right away so the status on the
// response is final when it is logged or counted. The error is consumed.
func flushError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
