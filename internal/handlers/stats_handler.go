package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type statsApplicationService interface {
	CalculateEarnings(ctx context.Context, instructorID int64, from, to time.Time) (float64, error)
	GetPopularTimeSlots(ctx context.Context, instructorID int64) ([]models.HourSlot, error)
	GetSessionStats(ctx context.Context, instructorID int64, from, to time.Time) (*models.SessionStats, error)
}

type StatsHandler struct {
	service statsApplicationService
}

func NewStatsHandler(service *services.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// statsWindow reads the from/to query range, defaulting to the last 30 days.
func statsWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

func (h *StatsHandler) GetEarnings(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	from, to, err := statsWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from/to must be valid RFC3339 timestamps"})
	}

	earnings, err := h.service.CalculateEarnings(c.Context(), instructorID, from, to)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"earnings": earnings, "currency": "USD"})
}

func (h *StatsHandler) GetPopularTimeSlots(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	slots, err := h.service.GetPopularTimeSlots(c.Context(), instructorID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"popular_time_slots": slots})
}

func (h *StatsHandler) GetSessionStats(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	from, to, err := statsWindow(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from/to must be valid RFC3339 timestamps"})
	}

	stats, err := h.service.GetSessionStats(c.Context(), instructorID, from, to)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}
