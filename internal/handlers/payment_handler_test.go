package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubPaymentService struct {
	intentResult   *models.PaymentIntent
	intentErr      error
	statusResult   *models.PaymentIntent
	statusErr      error
	refundResult   *models.PaymentIntent
	refundErr      error
	payoutResult   *models.Payout
	payoutErr      error
	payoutsResult  []models.Payout
	payoutsErr     error
	lastBookingID  int64
	lastAmount     float64
	lastCurrency   string
	lastIntentID   int64
	lastNext       models.PaymentIntentStatus
	lastReason     string
	lastInstructor int64
	lastSessionIDs []int64
	lastPayoutID   int64
	lastPayoutNext models.PayoutStatus
}

func (s *stubPaymentService) CreatePaymentIntent(_ context.Context, bookingID int64, amount float64, currency string) (*models.PaymentIntent, error) {
	s.lastBookingID = bookingID
	s.lastAmount = amount
	s.lastCurrency = currency
	return s.intentResult, s.intentErr
}

func (s *stubPaymentService) UpdatePaymentStatus(_ context.Context, id int64, next models.PaymentIntentStatus) (*models.PaymentIntent, error) {
	s.lastIntentID = id
	s.lastNext = next
	return s.statusResult, s.statusErr
}

func (s *stubPaymentService) ProcessRefund(_ context.Context, bookingID int64, amount float64, reason string) (*models.PaymentIntent, error) {
	s.lastBookingID = bookingID
	s.lastAmount = amount
	s.lastReason = reason
	return s.refundResult, s.refundErr
}

func (s *stubPaymentService) GetPaymentIntent(_ context.Context, bookingID int64) (*models.PaymentIntent, error) {
	s.lastBookingID = bookingID
	return s.intentResult, s.intentErr
}

func (s *stubPaymentService) CreatePayout(_ context.Context, instructorID int64, sessionIDs []int64) (*models.Payout, error) {
	s.lastInstructor = instructorID
	s.lastSessionIDs = sessionIDs
	return s.payoutResult, s.payoutErr
}

func (s *stubPaymentService) UpdatePayoutStatus(_ context.Context, id int64, next models.PayoutStatus) (*models.Payout, error) {
	s.lastPayoutID = id
	s.lastPayoutNext = next
	return s.payoutResult, s.payoutErr
}

func (s *stubPaymentService) ListPayouts(_ context.Context, instructorID int64) ([]models.Payout, error) {
	s.lastInstructor = instructorID
	return s.payoutsResult, s.payoutsErr
}

func newPaymentTestApp(service *stubPaymentService) *fiber.App {
	handler := &PaymentHandler{service: service}
	app := fiber.New()
	app.Post("/api/v1/payments/intents", handler.CreatePaymentIntent)
	app.Put("/api/v1/payments/intents/:id/status", handler.UpdatePaymentStatus)
	app.Post("/api/v1/payments/refunds", handler.ProcessRefund)
	app.Post("/api/v1/payouts", handler.CreatePayout)
	app.Put("/api/v1/payouts/:id/status", handler.UpdatePayoutStatus)
	return app
}

func TestCreatePaymentIntentValidatesCurrency(t *testing.T) {
	service := &stubPaymentService{}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{
		"booking_id": 31,
		"amount": 60,
		"currency": "DOLLARS"
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

func TestCreatePaymentIntentReturnsCreated(t *testing.T) {
	service := &stubPaymentService{
		intentResult: &models.PaymentIntent{ID: 3, BookingID: 31, Amount: 60, Currency: "USD"},
	}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{
		"booking_id": 31,
		"amount": 60,
		"currency": "USD"
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
	if service.lastBookingID != 31 || service.lastAmount != 60 || service.lastCurrency != "USD" {
		t.Fatalf("unexpected call: booking %d amount %.2f currency %q",
			service.lastBookingID, service.lastAmount, service.lastCurrency)
	}
}

func TestCreatePaymentIntentMapsGatewayFailure(t *testing.T) {
	service := &stubPaymentService{intentErr: services.ErrPaymentGateway}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{
		"booking_id": 31,
		"amount": 60,
		"currency": "USD"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestUpdatePaymentStatusRejectsUnknownStatus(t *testing.T) {
	service := &stubPaymentService{}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/payments/intents/3/status",
		strings.NewReader(`{"status": "settled"}`))
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

func TestUpdatePaymentStatusMapsIllegalTransition(t *testing.T) {
	service := &stubPaymentService{statusErr: services.ErrInvalidStateTransition}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/payments/intents/3/status",
		strings.NewReader(`{"status": "refunded"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastIntentID != 3 || service.lastNext != models.PaymentIntentRefunded {
		t.Fatalf("unexpected call: id %d next %q", service.lastIntentID, service.lastNext)
	}
}

func TestProcessRefundPassesReason(t *testing.T) {
	service := &stubPaymentService{
		refundResult: &models.PaymentIntent{ID: 3, Status: models.PaymentIntentRefunded},
	}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refunds", strings.NewReader(`{
		"booking_id": 31,
		"amount": 60,
		"reason": "instructor rejected"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastReason != "instructor rejected" || service.lastAmount != 60 {
		t.Fatalf("unexpected call: reason %q amount %.2f", service.lastReason, service.lastAmount)
	}
}

func TestCreatePayoutRequiresSessionIDs(t *testing.T) {
	service := &stubPaymentService{}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts", strings.NewReader(`{
		"instructor_id": 7,
		"session_ids": []
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

func TestCreatePayoutMapsConflictForPaidSessions(t *testing.T) {
	service := &stubPaymentService{payoutErr: services.ErrConflict}
	app := newPaymentTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts", strings.NewReader(`{
		"instructor_id": 7,
		"session_ids": [11, 12]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if len(service.lastSessionIDs) != 2 || service.lastInstructor != 7 {
		t.Fatalf("unexpected call: instructor %d sessions %v", service.lastInstructor, service.lastSessionIDs)
	}
}
