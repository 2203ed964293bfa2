package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/services"
	notifyws "github.com/arman-y/TutorHubBack/internal/websocket"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type notificationApplicationService interface {
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type NotificationHandler struct {
	service notificationApplicationService
	hub     *notifyws.Hub
}

func NewNotificationHandler(service *services.NotificationService, hub *notifyws.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	unreadOnly := c.QueryBool("unread", false)
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	notifications, total, err := h.service.List(c.Context(), userID, unreadOnly, limit, (page-1)*limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": notifications,
		"pagination":    buildPaginationMeta(page, limit, total),
	})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	updated, err := h.service.MarkAllRead(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *NotificationHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	userID := strings.TrimSpace(c.Query("user_id"))
	if parsed, err := strconv.ParseInt(userID, 10, 64); err != nil || parsed <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id query parameter is required"})
	}

	c.Locals("user_id", userID)
	return c.Next()
}

func (h *NotificationHandler) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	client := notifyws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}
