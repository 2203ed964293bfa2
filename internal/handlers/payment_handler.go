package handlers

import (
	"context"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type paymentApplicationService interface {
	CreatePaymentIntent(ctx context.Context, bookingID int64, amount float64, currency string) (*models.PaymentIntent, error)
	UpdatePaymentStatus(ctx context.Context, id int64, next models.PaymentIntentStatus) (*models.PaymentIntent, error)
	ProcessRefund(ctx context.Context, bookingID int64, amount float64, reason string) (*models.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, bookingID int64) (*models.PaymentIntent, error)
	CreatePayout(ctx context.Context, instructorID int64, sessionIDs []int64) (*models.Payout, error)
	UpdatePayoutStatus(ctx context.Context, id int64, next models.PayoutStatus) (*models.Payout, error)
	ListPayouts(ctx context.Context, instructorID int64) ([]models.Payout, error)
}

type PaymentHandler struct {
	service paymentApplicationService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type createPaymentIntentRequest struct {
	BookingID int64   `json:"booking_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,len=3"`
}

type updatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=processing succeeded failed refunded"`
}

type refundRequest struct {
	BookingID int64   `json:"booking_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reason    string  `json:"reason"`
}

type createPayoutRequest struct {
	InstructorID int64   `json:"instructor_id" validate:"required,gt=0"`
	SessionIDs   []int64 `json:"session_ids" validate:"required,min=1"`
}

type updatePayoutStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid"`
}

func (h *PaymentHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	var req createPaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	intent, err := h.service.CreatePaymentIntent(c.Context(), req.BookingID, req.Amount, req.Currency)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payment_intent": intent})
}

func (h *PaymentHandler) GetPaymentIntent(c *fiber.Ctx) error {
	bookingID, err := parseIDParam(c, "bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}
	intent, err := h.service.GetPaymentIntent(c.Context(), bookingID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"payment_intent": intent})
}

func (h *PaymentHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	intentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment intent id"})
	}

	var req updatePaymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	intent, err := h.service.UpdatePaymentStatus(c.Context(), intentID, models.PaymentIntentStatus(req.Status))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"payment_intent": intent})
}

func (h *PaymentHandler) ProcessRefund(c *fiber.Ctx) error {
	var req refundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	intent, err := h.service.ProcessRefund(c.Context(), req.BookingID, req.Amount, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"payment_intent": intent})
}

func (h *PaymentHandler) CreatePayout(c *fiber.Ctx) error {
	var req createPayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	payout, err := h.service.CreatePayout(c.Context(), req.InstructorID, req.SessionIDs)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"payout": payout})
}

func (h *PaymentHandler) UpdatePayoutStatus(c *fiber.Ctx) error {
	payoutID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout id"})
	}

	var req updatePayoutStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	payout, err := h.service.UpdatePayoutStatus(c.Context(), payoutID, models.PayoutStatus(req.Status))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"payout": payout})
}

func (h *PaymentHandler) ListPayouts(c *fiber.Ctx) error {
	instructorID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	payouts, err := h.service.ListPayouts(c.Context(), instructorID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"payouts": payouts})
}
