package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// data wraps every successful response in the API's {"data": ...}
// envelope.
func data(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(fiber.Map{"data": v})
}

// fail maps a domain error onto a stable HTTP status and message. The
// default branch logs and hides internals behind a generic 500.
func fail(c *fiber.Ctx, action string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nf.Error()})
	}
	var is *domain.InsufficientStockError
	if errors.As(err, &is) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": is.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrEditWindowExpired),
		errors.Is(err, domain.ErrStatusTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
