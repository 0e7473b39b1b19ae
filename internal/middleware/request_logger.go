package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/logger"
)

// RequestLogger writes one line per request. It expects the requestid
// middleware to run first.
func RequestLogger(l *logger.Logger) fiber.Handler {
	if l == nil {
		l = logger.Std()
	}
	l = l.Named("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		// Errors are rendered here so the logged status is the one sent.
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := logger.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}
		if status >= fiber.StatusInternalServerError {
			l.Warn("request", fields)
		} else {
			l.Info("request", fields)
		}
		return nil
	}
}
