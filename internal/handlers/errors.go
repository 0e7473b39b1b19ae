package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/logger"
	"catalog/internal/services"
)

// MsgUnexpected is the only detail clients get for unclassified failures.
const MsgUnexpected = "An unexpected error occurred. Please try again later."

// ErrorHandler translates errors returned by handlers into responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		verr *services.ValidationError
		nf   *services.NotFoundError
		fe   *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(verr.Fields())
	case errors.As(err, &nf):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": nf.Error()})
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	logger.Error("unhandled error", logger.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		"error":      err.Error(),
	})
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": MsgUnexpected})
}

func badRequest(format string, args ...interface{}) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(format, args...))
}
