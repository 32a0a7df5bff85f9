// Package middleware holds the fiber middleware shared by every route.
package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/artem13815/docqa/api/http/presenter"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, honouring one sent by the client.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     RequestIDHeader,
		Generator:  uuid.NewString,
		ContextKey: presenter.RequestIDKey,
	})
}

// RequestLogger writes one "http_request" line per request.
func RequestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := c.Path()

		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		if route == "" || route == "/" && path != "/" {
			route = path // fallback (e.g. 404)
		}
		status := c.Response().StatusCode()

		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(c.UserContext(), level, "http_request",
			slog.String("method", method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", presenter.RequestID(c)),
		)
		return nil
	}
}
