package services

import (
	"context"
	"testing"
	"time"

	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newIntegrationSlotService(pool *pgxpool.Pool) *SlotService {
	return NewSlotService(pool,
		repository.NewAvailabilityRepository(pool),
		repository.NewSlotRepository(pool),
	)
}

func TestGenerateSlotsRegenerationClearsZonedEveningSlots(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationSlotService(pool)

	instructorID := testActorID()
	t.Cleanup(func() { cleanupTestData(t, ctx, pool, instructorID) })

	day := time.Date(2030, 10, 14, 0, 0, 0, 0, time.UTC)
	if _, err := service.CreateAvailability(ctx, repository.CreateAvailabilityInput{
		InstructorID:       instructorID,
		SpecificDate:       &day,
		StartTime:          "20:00",
		EndTime:            "23:00",
		MaxSessionsPerSlot: 1,
		Timezone:           "America/New_York",
	}); err != nil {
		t.Fatalf("CreateAvailability: %v", err)
	}

	slots, err := service.GenerateSlots(ctx, instructorID, day, day)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots for the evening window")
	}
	// A New York evening lands on the following UTC day; the stored rows
	// must still be keyed to the generation day.
	nextDay := day.AddDate(0, 0, 1)
	if slots[0].StartAt.Before(nextDay) {
		t.Fatalf("expected UTC start on the next day, got %v", slots[0].StartAt)
	}

	if _, err := pool.Exec(ctx,
		"UPDATE availabilities SET is_active = FALSE WHERE instructor_id = $1",
		instructorID,
	); err != nil {
		t.Fatalf("deactivate availability: %v", err)
	}
	if _, err := service.GenerateSlots(ctx, instructorID, day, day); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	var remaining int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM time_slots WHERE instructor_id = $1",
		instructorID,
	).Scan(&remaining); err != nil {
		t.Fatalf("count slots: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected regeneration to clear the day's slots, got %d left", remaining)
	}
}
