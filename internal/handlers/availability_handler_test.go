package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubAvailabilityService struct {
	createResult   *models.Availability
	createErr      error
	updateResult   *models.Availability
	updateErr      error
	deleteErr      error
	listResult     []models.Availability
	listErr        error
	generateResult []models.TimeSlot
	generateErr    error
	slotsResult    []models.TimeSlot
	slotsErr       error
	lastCreate     repository.CreateAvailabilityInput
	lastID         int64
	lastInstructor int64
	lastActiveOnly bool
	lastFrom       time.Time
	lastTo         time.Time
	lastDate       time.Time
}

func (s *stubAvailabilityService) CreateAvailability(_ context.Context, input repository.CreateAvailabilityInput) (*models.Availability, error) {
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubAvailabilityService) UpdateAvailability(_ context.Context, id int64, _ repository.UpdateAvailabilityInput) (*models.Availability, error) {
	s.lastID = id
	return s.updateResult, s.updateErr
}

func (s *stubAvailabilityService) DeleteAvailability(_ context.Context, id int64) error {
	s.lastID = id
	return s.deleteErr
}

func (s *stubAvailabilityService) ListAvailability(_ context.Context, instructorID int64, activeOnly bool) ([]models.Availability, error) {
	s.lastInstructor = instructorID
	s.lastActiveOnly = activeOnly
	return s.listResult, s.listErr
}

func (s *stubAvailabilityService) GenerateSlots(_ context.Context, instructorID int64, from, to time.Time) ([]models.TimeSlot, error) {
	s.lastInstructor = instructorID
	s.lastFrom = from
	s.lastTo = to
	return s.generateResult, s.generateErr
}

func (s *stubAvailabilityService) ListSlots(_ context.Context, instructorID int64, date time.Time) ([]models.TimeSlot, error) {
	s.lastInstructor = instructorID
	s.lastDate = date
	return s.slotsResult, s.slotsErr
}

func newAvailabilityTestApp(service *stubAvailabilityService) *fiber.App {
	handler := &AvailabilityHandler{service: service}
	app := fiber.New()
	app.Post("/api/v1/instructors/:id/availability", handler.CreateAvailability)
	app.Get("/api/v1/instructors/:id/availability", handler.ListAvailability)
	app.Put("/api/v1/instructors/:id/availability/:availabilityId", handler.UpdateAvailability)
	app.Delete("/api/v1/instructors/:id/availability/:availabilityId", handler.DeleteAvailability)
	app.Post("/api/v1/instructors/:id/slots/generate", handler.GenerateSlots)
	app.Get("/api/v1/instructors/:id/slots", handler.ListSlots)
	return app
}

func TestCreateAvailabilityParsesSpecificDate(t *testing.T) {
	service := &stubAvailabilityService{
		createResult: &models.Availability{ID: 1, InstructorID: 7},
	}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instructors/7/availability", strings.NewReader(`{
		"specific_date": "2030-03-04",
		"start_time": "09:00",
		"end_time": "11:00",
		"max_sessions_per_slot": 1,
		"timezone": "UTC"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreate.InstructorID != 7 {
		t.Fatalf("expected instructor 7, got %d", service.lastCreate.InstructorID)
	}
	if service.lastCreate.SpecificDate == nil ||
		!service.lastCreate.SpecificDate.Equal(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected specific date: %v", service.lastCreate.SpecificDate)
	}
}

func TestCreateAvailabilityRejectsOverlappingWindow(t *testing.T) {
	service := &stubAvailabilityService{createErr: services.ErrInvalidInput}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instructors/7/availability", strings.NewReader(`{
		"day_of_week": 1,
		"start_time": "11:00",
		"end_time": "09:00",
		"max_sessions_per_slot": 1
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGenerateSlotsParsesRange(t *testing.T) {
	service := &stubAvailabilityService{
		generateResult: []models.TimeSlot{{ID: 1, InstructorID: 7}},
	}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instructors/7/slots/generate", strings.NewReader(`{
		"from": "2030-03-04",
		"to": "2030-03-10"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if !service.lastFrom.Equal(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)) ||
		!service.lastTo.Equal(time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range: %v - %v", service.lastFrom, service.lastTo)
	}
}

func TestListSlotsRequiresDate(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/instructors/7/slots", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteAvailabilityReturnsNoContent(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/instructors/7/availability/3", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastID != 3 {
		t.Fatalf("expected availability 3, got %d", service.lastID)
	}
}

func TestInvalidInstructorIDRejected(t *testing.T) {
	service := &stubAvailabilityService{}
	app := newAvailabilityTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/instructors/abc/availability", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
