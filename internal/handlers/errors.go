package handlers

import (
	"errors"

	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// mapServiceError translates service sentinels into HTTP statuses so the
// caller can tell "fix your input" (400) from "choose another time" (409).
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Requested slot is not available"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "Booking request has expired"})
	case errors.Is(err, services.ErrOfferingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offering not found"})
	case errors.Is(err, services.ErrPaymentGateway):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway unavailable"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
