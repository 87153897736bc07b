package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/paulexconde/surveyflow/pkg/fault"
)

// fail maps the fault taxonomy onto HTTP statuses. Internal faults are
// logged and answered with a generic body so wrapped driver errors never
// reach the client.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var f *fault.Fault
	message := "request failed"
	if errors.As(err, &f) {
		message = f.Message
	}

	switch {
	case fault.IsClientError(err) && errors.Is(err, fault.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": message})
	case fault.IsClientError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	case fault.IsConflictError(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": message})
	}

	h.logger.Printf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
