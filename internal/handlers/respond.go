package handlers

import (
	"log"

	"mentorship-service/internal/errs"

	"github.com/gofiber/fiber/v3"
)

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindUnauthorized:
		return fiber.StatusUnauthorized
	case errs.KindValidation:
		return fiber.StatusBadRequest
	case errs.KindNotFound:
		return fiber.StatusNotFound
	case errs.KindForbidden:
		return fiber.StatusForbidden
	case errs.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail maps a service error to an HTTP response. Classified errors carry a
// caller-safe message; anything else is logged and replaced with a generic
// one.
func fail(c fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	message := err.Error()

	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
		message = fallback
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
