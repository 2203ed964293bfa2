package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type availabilityService interface {
	CreateAvailability(ctx context.Context, input repository.CreateAvailabilityInput) (*models.Availability, error)
	UpdateAvailability(ctx context.Context, id int64, input repository.UpdateAvailabilityInput) (*models.Availability, error)
	DeleteAvailability(ctx context.Context, id int64) error
	ListAvailability(ctx context.Context, instructorID int64, activeOnly bool) ([]models.Availability, error)
	GenerateSlots(ctx context.Context, instructorID int64, from, to time.Time) ([]models.TimeSlot, error)
	ListSlots(ctx context.Context, instructorID int64, date time.Time) ([]models.TimeSlot, error)
}

type AvailabilityHandler struct {
	service availabilityService
}

func NewAvailabilityHandler(service *services.SlotService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

type createAvailabilityRequest struct {
	DayOfWeek          *int    `json:"day_of_week"`
	SpecificDate       *string `json:"specific_date"`
	StartTime          string  `json:"start_time" validate:"required"`
	EndTime            string  `json:"end_time" validate:"required"`
	MaxSessionsPerSlot int     `json:"max_sessions_per_slot" validate:"gte=1"`
	MinAdvanceHours    int     `json:"min_advance_hours" validate:"gte=0"`
	BufferMinutes      int     `json:"buffer_minutes" validate:"gte=0"`
	Timezone           string  `json:"timezone"`
	AutoAccept         bool    `json:"auto_accept"`
}

type updateAvailabilityRequest struct {
	StartTime          string `json:"start_time" validate:"required"`
	EndTime            string `json:"end_time" validate:"required"`
	IsActive           bool   `json:"is_active"`
	MaxSessionsPerSlot int    `json:"max_sessions_per_slot" validate:"gte=1"`
	MinAdvanceHours    int    `json:"min_advance_hours" validate:"gte=0"`
	BufferMinutes      int    `json:"buffer_minutes" validate:"gte=0"`
	AutoAccept         bool   `json:"auto_accept"`
}

type generateSlotsRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (h *AvailabilityHandler) CreateAvailability(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	var req createAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var specificDate *time.Time
	if req.SpecificDate != nil && strings.TrimSpace(*req.SpecificDate) != "" {
		parsed, err := time.Parse("2006-01-02", *req.SpecificDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "specific_date must be YYYY-MM-DD"})
		}
		specificDate = &parsed
	}

	availability, err := h.service.CreateAvailability(c.Context(), repository.CreateAvailabilityInput{
		InstructorID:       instructorID,
		DayOfWeek:          req.DayOfWeek,
		SpecificDate:       specificDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		MaxSessionsPerSlot: req.MaxSessionsPerSlot,
		MinAdvanceHours:    req.MinAdvanceHours,
		BufferMinutes:      req.BufferMinutes,
		Timezone:           req.Timezone,
		AutoAccept:         req.AutoAccept,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"availability": availability})
}

func (h *AvailabilityHandler) ListAvailability(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	activeOnly := c.QueryBool("active", false)
	availabilities, err := h.service.ListAvailability(c.Context(), instructorID, activeOnly)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"availability": availabilities})
}

func (h *AvailabilityHandler) UpdateAvailability(c *fiber.Ctx) error {
	availabilityID, err := parseIDParam(c, "availabilityId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid availability id"})
	}

	var req updateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	availability, err := h.service.UpdateAvailability(c.Context(), availabilityID, repository.UpdateAvailabilityInput{
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsActive:           req.IsActive,
		MaxSessionsPerSlot: req.MaxSessionsPerSlot,
		MinAdvanceHours:    req.MinAdvanceHours,
		BufferMinutes:      req.BufferMinutes,
		AutoAccept:         req.AutoAccept,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"availability": availability})
}

func (h *AvailabilityHandler) DeleteAvailability(c *fiber.Ctx) error {
	availabilityID, err := parseIDParam(c, "availabilityId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid availability id"})
	}
	if err := h.service.DeleteAvailability(c.Context(), availabilityID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AvailabilityHandler) GenerateSlots(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	var req generateSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be YYYY-MM-DD"})
	}

	slots, err := h.service.GenerateSlots(c.Context(), instructorID, from, to)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"slots": slots})
}

func (h *AvailabilityHandler) ListSlots(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	slots, err := h.service.ListSlots(c.Context(), instructorID, date)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"slots": slots})
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
