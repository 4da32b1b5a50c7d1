package middlewares

import (
	"errors"
	"strings"

	"facturation-backend/billing"
	"facturation-backend/database"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			// Namespace minus the root struct, e.g. "Items[0].Quantity"
			out[fieldPath(fe)] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Domain errors
	switch {
	case errors.Is(err, database.ErrInvoiceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "invoice not found"})
	case errors.Is(err, database.ErrIdempotencyConflict), errors.Is(err, database.ErrIdempotencyInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, billing.ErrNegativeAmount), errors.Is(err, billing.ErrAmountTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// 4) Unknown errors (500)
	zap.L().Error("internal error",
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
