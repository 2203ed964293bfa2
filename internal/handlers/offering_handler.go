package handlers

import (
	"context"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type offeringApplicationService interface {
	CreateOffering(ctx context.Context, input repository.CreateOfferingInput) (*models.SessionOffering, error)
	UpdateOffering(ctx context.Context, id int64, input repository.UpdateOfferingInput) (*models.SessionOffering, error)
	DeactivateOffering(ctx context.Context, id int64) (*models.SessionOffering, error)
	ListOfferings(ctx context.Context, filter repository.OfferingListFilter) ([]models.SessionOffering, error)
	GetOffering(ctx context.Context, id int64) (*models.OfferingDetail, error)
}

type OfferingHandler struct {
	service offeringApplicationService
}

func NewOfferingHandler(service *services.OfferingService) *OfferingHandler {
	return &OfferingHandler{service: service}
}

type createOfferingRequest struct {
	InstructorID       int64    `json:"instructor_id" validate:"required,gt=0"`
	Title              string   `json:"title" validate:"required"`
	Description        *string  `json:"description"`
	TopicType          string   `json:"topic_type" validate:"required,oneof=fixed flexible"`
	SessionType        string   `json:"session_type" validate:"required,oneof=individual group"`
	Format             string   `json:"format" validate:"required,oneof=online offline hybrid"`
	DurationMinutes    int      `json:"duration_minutes" validate:"required,gt=0"`
	Capacity           int      `json:"capacity" validate:"gte=0"`
	BasePrice          float64  `json:"base_price" validate:"gte=0"`
	Currency           string   `json:"currency" validate:"required,len=3"`
	IsPublic           bool     `json:"is_public"`
	RequiresApproval   bool     `json:"requires_approval"`
	RecordingEnabled   bool     `json:"recording_enabled"`
	WhiteboardEnabled  bool     `json:"whiteboard_enabled"`
	ChatEnabled        bool     `json:"chat_enabled"`
	ScreenShareEnabled bool     `json:"screen_share_enabled"`
	CancellationPolicy string   `json:"cancellation_policy"`
	Tags               []string `json:"tags"`
	Prerequisites      []string `json:"prerequisites"`
	Materials          []string `json:"materials"`
}

type updateOfferingRequest struct {
	Title           string   `json:"title" validate:"required"`
	Description     *string  `json:"description"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,gt=0"`
	BasePrice       float64  `json:"base_price" validate:"gte=0"`
	IsPublic        bool     `json:"is_public"`
	Tags            []string `json:"tags"`
	Prerequisites   []string `json:"prerequisites"`
	Materials       []string `json:"materials"`
}

func (h *OfferingHandler) CreateOffering(c *fiber.Ctx) error {
	var req createOfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	offering, err := h.service.CreateOffering(c.Context(), repository.CreateOfferingInput{
		InstructorID:       req.InstructorID,
		Title:              req.Title,
		Description:        req.Description,
		TopicType:          models.TopicType(req.TopicType),
		SessionType:        models.SessionType(req.SessionType),
		Format:             models.SessionFormat(req.Format),
		DurationMinutes:    req.DurationMinutes,
		Capacity:           req.Capacity,
		BasePrice:          req.BasePrice,
		Currency:           req.Currency,
		IsPublic:           req.IsPublic,
		RequiresApproval:   req.RequiresApproval,
		RecordingEnabled:   req.RecordingEnabled,
		WhiteboardEnabled:  req.WhiteboardEnabled,
		ChatEnabled:        req.ChatEnabled,
		ScreenShareEnabled: req.ScreenShareEnabled,
		CancellationPolicy: models.CancellationPolicy(req.CancellationPolicy),
		Tags:               req.Tags,
		Prerequisites:      req.Prerequisites,
		Materials:          req.Materials,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"offering": offering})
}

func (h *OfferingHandler) ListOfferings(c *fiber.Ctx) error {
	filter := repository.OfferingListFilter{
		InstructorID: int64(c.QueryInt("instructor_id", 0)),
		ActiveOnly:   c.QueryBool("active", false),
		PublicOnly:   c.QueryBool("public", false),
	}
	offerings, err := h.service.ListOfferings(c.Context(), filter)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"offerings": offerings})
}

func (h *OfferingHandler) GetOffering(c *fiber.Ctx) error {
	offeringID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}
	offering, err := h.service.GetOffering(c.Context(), offeringID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"offering": offering})
}

func (h *OfferingHandler) UpdateOffering(c *fiber.Ctx) error {
	offeringID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}

	var req updateOfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateStruct(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	offering, err := h.service.UpdateOffering(c.Context(), offeringID, repository.UpdateOfferingInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		BasePrice:       req.BasePrice,
		IsPublic:        req.IsPublic,
		Tags:            req.Tags,
		Prerequisites:   req.Prerequisites,
		Materials:       req.Materials,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"offering": offering})
}

func (h *OfferingHandler) DeactivateOffering(c *fiber.Ctx) error {
	offeringID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offering id"})
	}
	offering, err := h.service.DeactivateOffering(c.Context(), offeringID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"offering": offering})
}
