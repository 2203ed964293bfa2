package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type bookingApplicationService interface {
	CreateBookingRequest(ctx context.Context, input services.CreateBookingInput) (*models.BookingDetail, error)
	AcceptBookingRequest(ctx context.Context, id int64) (*models.BookingDetail, error)
	RejectBookingRequest(ctx context.Context, id int64, reason string) (*models.BookingRequest, error)
	CancelBookingRequest(ctx context.Context, id int64, reason string) (*models.BookingRequest, error)
	GetPendingRequests(ctx context.Context, instructorID int64) ([]models.BookingRequest, error)
	ListBookings(ctx context.Context, filter repository.BookingListFilter) ([]models.BookingDetail, error)
	GetBooking(ctx context.Context, id int64) (*models.BookingDetail, error)
}

type BookingHandler struct {
	service bookingApplicationService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingRequest struct {
	OfferingID         int64    `json:"offering_id" validate:"required,gt=0"`
	StudentID          int64    `json:"student_id" validate:"required,gt=0"`
	PreferredStart     string   `json:"preferred_start" validate:"required"`
	AlternativeStarts  []string `json:"alternative_starts" validate:"max=2"`
	CustomTopic        *string  `json:"custom_topic"`
	CustomDescription  *string  `json:"custom_description"`
	CustomRequirements *string  `json:"custom_requirements"`
	Priority           string   `json:"priority" validate:"omitempty,oneof=normal high"`
	OfferedPrice       float64  `json:"offered_price" validate:"gte=0"`
	StudentMessage     *string  `json:"student_message"`
}

type bookingReasonRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	preferredStart, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PreferredStart))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "preferred_start must be a valid RFC3339 timestamp"})
	}

	alternatives := make([]time.Time, 0, len(req.AlternativeStarts))
	for _, alt := range req.AlternativeStarts {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(alt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "alternative_starts must be valid RFC3339 timestamps"})
		}
		alternatives = append(alternatives, parsed)
	}

	detail, err := h.service.CreateBookingRequest(c.Context(), services.CreateBookingInput{
		OfferingID:         req.OfferingID,
		StudentID:          req.StudentID,
		PreferredStart:     preferredStart,
		AlternativeStarts:  alternatives,
		CustomTopic:        req.CustomTopic,
		CustomDescription:  req.CustomDescription,
		CustomRequirements: req.CustomRequirements,
		Priority:           models.BookingPriority(req.Priority),
		OfferedPrice:       req.OfferedPrice,
		StudentMessage:     req.StudentMessage,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	filter := repository.BookingListFilter{
		StudentID:  int64(c.QueryInt("student_id", 0)),
		OfferingID: int64(c.QueryInt("offering_id", 0)),
	}
	switch status {
	case "":
	case "expired":
		filter.ExpiredOnly = true
	case "pending", "accepted", "rejected", "cancelled":
		filter.Status = models.BookingStatus(status)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
	}

	bookings, err := h.service.ListBookings(c.Context(), filter)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}
	booking, err := h.service.GetBooking(c.Context(), bookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) AcceptBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}
	detail, err := h.service.AcceptBookingRequest(c.Context(), bookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": detail})
}

func (h *BookingHandler) RejectBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req bookingReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.RejectBookingRequest(c.Context(), bookingID, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req bookingReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	booking, err := h.service.CancelBookingRequest(c.Context(), bookingID, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"booking": booking})
}

func (h *BookingHandler) ListPendingForInstructor(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	bookings, err := h.service.GetPendingRequests(c.Context(), instructorID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}
