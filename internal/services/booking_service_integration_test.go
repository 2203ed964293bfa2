package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type nullPublisher struct{}

func (nullPublisher) Publish(context.Context, string, events.BookingEvent) {}
func (nullPublisher) Close() error                                        { return nil }

func TestBookingAcceptFlowCreatesSession(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
		OfferedPrice:   60,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}
	if detail.Status != models.BookingStatusPending {
		t.Fatalf("expected pending request, got %q", detail.Status)
	}
	if detail.Session != nil {
		t.Fatalf("expected no session before acceptance, got %+v", detail.Session)
	}

	accepted, err := service.AcceptBookingRequest(ctx, detail.ID)
	if err != nil {
		t.Fatalf("AcceptBookingRequest: %v", err)
	}
	if accepted.Status != models.BookingStatusAccepted {
		t.Fatalf("expected accepted request, got %q", accepted.Status)
	}
	if accepted.Session == nil {
		t.Fatal("expected session after acceptance")
	}
	if !accepted.Session.ScheduledStart.Equal(start) {
		t.Fatalf("expected session at %v, got %v", start, accepted.Session.ScheduledStart)
	}
	// 20% platform fee on the 60 offered.
	if accepted.Session.PlatformFee != 12 || accepted.Session.InstructorPayout != 48 {
		t.Fatalf("unexpected split: fee %.2f payout %.2f",
			accepted.Session.PlatformFee, accepted.Session.InstructorPayout)
	}
}

func TestBookingAcceptAdmitsOneRequestPerSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	firstStudentID := testActorID()
	secondStudentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, firstStudentID, secondStudentID) })

	start := time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	first, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      firstStudentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("first CreateBookingRequest: %v", err)
	}
	second, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      secondStudentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("second CreateBookingRequest: %v", err)
	}

	if _, err := service.AcceptBookingRequest(ctx, first.ID); err != nil {
		t.Fatalf("first AcceptBookingRequest: %v", err)
	}
	if _, err := service.AcceptBookingRequest(ctx, second.ID); err != ErrConflict {
		t.Fatalf("expected ErrConflict for full slot, got %v", err)
	}

	// The losing request is still pending and can be rejected normally.
	rejected, err := service.RejectBookingRequest(ctx, second.ID, "slot already taken")
	if err != nil {
		t.Fatalf("RejectBookingRequest: %v", err)
	}
	if rejected.Status != models.BookingStatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}
}

func TestBookingDuplicateRequestRejected(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 5, 6, 10, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	input := CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
	}
	if _, err := service.CreateBookingRequest(ctx, input); err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}
	if _, err := service.CreateBookingRequest(ctx, input); err != ErrConflict {
		t.Fatalf("expected ErrConflict for duplicate request, got %v", err)
	}
}

func TestBookingAdvanceNoticeCheckedAtCreateAndAccept(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	firstStudentID := testActorID()
	secondStudentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, firstStudentID, secondStudentID) })

	start := time.Date(2030, 9, 2, 10, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 2, true)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      firstStudentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}

	// The instructor tightens the notice window after the request was
	// filed; nothing inside it may be booked from here on.
	if _, err := pool.Exec(ctx,
		"UPDATE availabilities SET min_advance_hours = 100000 WHERE instructor_id = $1",
		instructorID,
	); err != nil {
		t.Fatalf("tighten notice window: %v", err)
	}

	if _, err := service.AcceptBookingRequest(ctx, detail.ID); err != ErrConflict {
		t.Fatalf("expected ErrConflict for short-notice accept, got %v", err)
	}
	if _, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      secondStudentID,
		PreferredStart: start,
	}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for short-notice request, got %v", err)
	}
}

func TestBookingInstantModeAcceptsImmediately(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 6, 3, 15, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, false)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}
	if detail.Status != models.BookingStatusAccepted {
		t.Fatalf("expected instant acceptance, got %q", detail.Status)
	}
	if detail.Session == nil {
		t.Fatal("expected session for instant booking")
	}
}

func TestBookingExpiredRequestCannotBeAccepted(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	// Negative TTL: every request is born past its deadline.
	service := newIntegrationBookingService(pool, -time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 7, 7, 9, 30, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}

	pending, err := service.GetPendingRequests(ctx, instructorID)
	if err != nil {
		t.Fatalf("GetPendingRequests: %v", err)
	}
	for _, b := range pending {
		if b.ID == detail.ID {
			t.Fatal("expected lapsed request to be hidden from pending list")
		}
	}

	if _, err := service.AcceptBookingRequest(ctx, detail.ID); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	got, err := service.GetBooking(ctx, detail.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != models.BookingStatusExpired {
		t.Fatalf("expected expired status, got %q", got.Status)
	}
}

func TestBookingListPendingFilterHidesLapsedRequests(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	// Negative TTL: every request is born past its deadline.
	service := newIntegrationBookingService(pool, -time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 8, 20, 14, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}

	repo := repository.NewBookingRepository(pool)
	pending, err := repo.List(ctx, repository.BookingListFilter{
		StudentID: studentID,
		Status:    models.BookingStatusPending,
	})
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	for _, b := range pending {
		if b.ID == detail.ID {
			t.Fatal("expected lapsed request to be hidden from the pending filter")
		}
	}

	expired, err := repo.List(ctx, repository.BookingListFilter{
		StudentID:   studentID,
		ExpiredOnly: true,
	})
	if err != nil {
		t.Fatalf("List expired: %v", err)
	}
	found := false
	for _, b := range expired {
		found = found || b.ID == detail.ID
	}
	if !found {
		t.Fatalf("expected booking %d under the expired filter", detail.ID)
	}
}

func TestExpireStaleSweepsPendingRequests(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, -time.Hour)

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 8, 10, 11, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	detail, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}

	expired, err := repository.NewBookingRepository(pool).ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}

	found := false
	for _, b := range expired {
		if b.ID == detail.ID {
			found = true
			if b.Status != models.BookingStatusExpired {
				t.Fatalf("expected expired status, got %q", b.Status)
			}
		}
	}
	if !found {
		t.Fatalf("expected booking %d in sweep result", detail.ID)
	}
}

func TestCancelAcceptedBookingReleasesSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationBookingService(pool, 24*time.Hour)

	instructorID := testActorID()
	firstStudentID := testActorID()
	secondStudentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, firstStudentID, secondStudentID) })

	start := time.Date(2030, 9, 2, 16, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	first, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      firstStudentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}
	if _, err := service.AcceptBookingRequest(ctx, first.ID); err != nil {
		t.Fatalf("AcceptBookingRequest: %v", err)
	}

	cancelled, err := service.CancelBookingRequest(ctx, first.ID, "student conflict")
	if err != nil {
		t.Fatalf("CancelBookingRequest: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	// The slot is free again for another student.
	second, err := service.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      secondStudentID,
		PreferredStart: start,
	})
	if err != nil {
		t.Fatalf("second CreateBookingRequest: %v", err)
	}
	if _, err := service.AcceptBookingRequest(ctx, second.ID); err != nil {
		t.Fatalf("second AcceptBookingRequest: %v", err)
	}
}

func TestPayoutOverCompletedSessions(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	bookings := newIntegrationBookingService(pool, 24*time.Hour)
	payments := NewPaymentService(
		pool,
		repository.NewPaymentRepository(pool),
		repository.NewPayoutRepository(pool),
		repository.NewSessionRepository(pool),
		StubGateway{},
		nullPublisher{},
		nil,
	)
	sessions := NewSessionService(pool, repository.NewSessionRepository(pool))

	instructorID := testActorID()
	studentID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID, studentID) })

	start := time.Date(2030, 10, 5, 13, 0, 0, 0, time.UTC)
	offeringID := seedOfferingAndSlots(t, ctx, pool, instructorID, start, 1, true)

	detail, err := bookings.CreateBookingRequest(ctx, CreateBookingInput{
		OfferingID:     offeringID,
		StudentID:      studentID,
		PreferredStart: start,
		OfferedPrice:   100,
	})
	if err != nil {
		t.Fatalf("CreateBookingRequest: %v", err)
	}
	accepted, err := bookings.AcceptBookingRequest(ctx, detail.ID)
	if err != nil {
		t.Fatalf("AcceptBookingRequest: %v", err)
	}
	sessionID := accepted.Session.ID

	// Backdate the session so it can be completed.
	if _, err := pool.Exec(ctx,
		"UPDATE live_sessions SET scheduled_start = NOW() - INTERVAL '2 hours', scheduled_end = NOW() - INTERVAL '1 hour' WHERE id = $1",
		sessionID,
	); err != nil {
		t.Fatalf("backdate session: %v", err)
	}
	if _, err := sessions.CompleteSession(ctx, sessionID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	payout, err := payments.CreatePayout(ctx, instructorID, []int64{sessionID})
	if err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	// Amount is the instructor's share of the completed session (80 of the
	// 100 offered after the 20% fee); the fee is subtracted again for net.
	if payout.Amount != 80 || payout.PlatformFee != 20 || payout.NetAmount != 60 {
		t.Fatalf("unexpected payout amounts: %+v", payout)
	}
	if payout.Status != models.PayoutStatusPending {
		t.Fatalf("expected pending payout, got %q", payout.Status)
	}

	// A second payout over the same session must not double-count.
	if _, err := payments.CreatePayout(ctx, instructorID, []int64{sessionID}); err != ErrConflict {
		t.Fatalf("expected ErrConflict for reused session, got %v", err)
	}

	paid, err := payments.UpdatePayoutStatus(ctx, payout.ID, models.PayoutStatusPaid)
	if err != nil {
		t.Fatalf("UpdatePayoutStatus: %v", err)
	}
	if paid.Status != models.PayoutStatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid payout with paid_at, got %+v", paid)
	}

	// paid -> paid is not a legal transition.
	if _, err := payments.UpdatePayoutStatus(ctx, payout.ID, models.PayoutStatusPaid); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationBookingService(pool *pgxpool.Pool, ttl time.Duration) *BookingService {
	return NewBookingService(
		pool,
		repository.NewBookingRepository(pool),
		repository.NewSessionRepository(pool),
		repository.NewOfferingRepository(pool),
		nullPublisher{},
		nil,
		ttl,
		20,
	)
}

var actorIDCounter int64

func testActorID() int64 {
	actorIDCounter++
	return time.Now().UnixNano()%1_000_000_000 + actorIDCounter*1_000_000_000
}

// seedOfferingAndSlots creates one availability window covering start,
// generates the slot grid for that day and returns a matching offering.
func seedOfferingAndSlots(
	t *testing.T,
	ctx context.Context,
	pool *pgxpool.Pool,
	instructorID int64,
	start time.Time,
	capacity int,
	requiresApproval bool,
) int64 {
	t.Helper()

	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	slotService := NewSlotService(pool,
		repository.NewAvailabilityRepository(pool),
		repository.NewSlotRepository(pool),
	)

	if _, err := slotService.CreateAvailability(ctx, repository.CreateAvailabilityInput{
		InstructorID:       instructorID,
		SpecificDate:       &date,
		StartTime:          start.Format("15:04"),
		EndTime:            start.Add(2 * time.Hour).Format("15:04"),
		MaxSessionsPerSlot: capacity,
		Timezone:           "UTC",
	}); err != nil {
		t.Fatalf("CreateAvailability: %v", err)
	}
	if _, err := slotService.GenerateSlots(ctx, instructorID, date, date); err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	offering, err := repository.NewOfferingRepository(pool).Create(ctx, repository.CreateOfferingInput{
		InstructorID:       instructorID,
		Title:              "Algebra crash course",
		TopicType:          models.TopicTypeFixed,
		SessionType:        models.SessionTypeIndividual,
		Format:             models.SessionFormatOnline,
		DurationMinutes:    30,
		Capacity:           1,
		BasePrice:          50,
		Currency:           "USD",
		IsPublic:           true,
		RequiresApproval:   requiresApproval,
		ChatEnabled:        true,
		CancellationPolicy: models.CancellationModerate,
	})
	if err != nil {
		t.Fatalf("create offering: %v", err)
	}
	return offering.ID
}

func cleanupTestData(t *testing.T, ctx context.Context, pool *pgxpool.Pool, actorIDs ...int64) {
	t.Helper()

	if len(actorIDs) == 0 {
		return
	}

	statements := []string{
		"DELETE FROM notifications WHERE user_id = ANY($1)",
		"DELETE FROM payment_intents WHERE booking_id IN (SELECT id FROM booking_requests WHERE student_id = ANY($1))",
		"DELETE FROM live_sessions WHERE instructor_id = ANY($1) OR student_id = ANY($1)",
		"DELETE FROM payouts WHERE instructor_id = ANY($1)",
		"DELETE FROM booking_requests WHERE student_id = ANY($1) OR offering_id IN (SELECT id FROM offerings WHERE instructor_id = ANY($1))",
		"DELETE FROM time_slots WHERE instructor_id = ANY($1)",
		"DELETE FROM offerings WHERE instructor_id = ANY($1)",
		"DELETE FROM availabilities WHERE instructor_id = ANY($1)",
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt, actorIDs); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}
