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

type sessionApplicationService interface {
	CompleteSession(ctx context.Context, id int64) (*models.LiveSession, error)
	UpdateNotes(ctx context.Context, id int64, notes *string) (*models.LiveSession, error)
	ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.LiveSession, error)
	GetSession(ctx context.Context, id int64) (*models.LiveSession, error)
}

type SessionHandler struct {
	service sessionApplicationService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type updateSessionNotesRequest struct {
	Notes *string `json:"notes"`
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	filter := repository.SessionListFilter{
		InstructorID: int64(c.QueryInt("instructor_id", 0)),
		StudentID:    int64(c.QueryInt("student_id", 0)),
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		switch models.SessionStatus(status) {
		case models.SessionStatusScheduled, models.SessionStatusCompleted, models.SessionStatusCancelled:
			filter.Status = models.SessionStatus(status)
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status filter"})
		}
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be a valid RFC3339 timestamp"})
		}
		filter.From = parsed
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be a valid RFC3339 timestamp"})
		}
		filter.To = parsed
	}

	sessions, err := h.service.ListSessions(c.Context(), filter)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) CompleteSession(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	session, err := h.service.CompleteSession(c.Context(), sessionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateSessionNotes(c *fiber.Ctx) error {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req updateSessionNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.UpdateNotes(c.Context(), sessionID, req.Notes)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"session": session})
}
