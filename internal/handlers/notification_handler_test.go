package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/gofiber/fiber/v2"
)

type stubNotificationService struct {
	listResult     []models.Notification
	listTotal      int
	listErr        error
	markAllResult  int64
	markAllErr     error
	lastUserID     int64
	lastUnreadOnly bool
	lastLimit      int
	lastOffset     int
}

func (s *stubNotificationService) List(_ context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, int, error) {
	s.lastUserID = userID
	s.lastUnreadOnly = unreadOnly
	s.lastLimit = limit
	s.lastOffset = offset
	return s.listResult, s.listTotal, s.listErr
}

func (s *stubNotificationService) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	s.lastUserID = userID
	return s.markAllResult, s.markAllErr
}

func newNotificationTestApp(service *stubNotificationService) *fiber.App {
	handler := &NotificationHandler{service: service}
	app := fiber.New()
	app.Get("/api/v1/users/:userId/notifications", handler.ListNotifications)
	app.Post("/api/v1/users/:userId/notifications/read-all", handler.MarkAllRead)
	return app
}

func TestListNotificationsPaginates(t *testing.T) {
	service := &stubNotificationService{
		listResult: []models.Notification{{ID: 3, UserID: 42, Type: models.NotificationBookingCreated}},
		listTotal:  45,
	}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/notifications?page=2&limit=10&unread=true", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 || !service.lastUnreadOnly {
		t.Fatalf("unexpected query: user %d unread %v", service.lastUserID, service.lastUnreadOnly)
	}
	if service.lastLimit != 10 || service.lastOffset != 10 {
		t.Fatalf("expected limit 10 offset 10, got %d/%d", service.lastLimit, service.lastOffset)
	}

	var body struct {
		Notifications []models.Notification `json:"notifications"`
		Pagination    models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Pagination.Total != 45 || body.Pagination.TotalPages != 5 {
		t.Fatalf("unexpected pagination meta: %+v", body.Pagination)
	}
}

func TestListNotificationsCapsLimit(t *testing.T) {
	service := &stubNotificationService{}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42/notifications?limit=5000", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastLimit != maxPageLimit {
		t.Fatalf("expected limit capped at %d, got %d", maxPageLimit, service.lastLimit)
	}
}

func TestListNotificationsRejectsBadUserID(t *testing.T) {
	service := &stubNotificationService{}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc/notifications", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	service := &stubNotificationService{markAllResult: 6}
	app := newNotificationTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/42/notifications/read-all", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Updated int64 `json:"updated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Updated != 6 {
		t.Fatalf("expected 6 updated, got %d", body.Updated)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", service.lastUserID)
	}
}
