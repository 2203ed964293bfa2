package services

import (
	"testing"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
)

func buildAvailability(id int64, dayOfWeek int, start, end string) models.Availability {
	day := dayOfWeek
	return models.Availability{
		ID:                 id,
		InstructorID:       7,
		DayOfWeek:          &day,
		StartTime:          start,
		EndTime:            end,
		MaxSessionsPerSlot: 1,
		Timezone:           "UTC",
		IsActive:           true,
	}
}

func TestBuildSlotsSlicesWindowIntoHalfHours(t *testing.T) {
	// 2026-03-02 is a Monday.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	slots := buildSlots(7, []models.Availability{
		buildAvailability(1, 1, "09:00", "11:00"),
	}, day, day, now)

	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	for i, slot := range slots {
		wantStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * 30 * time.Minute)
		if !slot.StartAt.Equal(wantStart) {
			t.Fatalf("slot %d: expected start %v, got %v", i, wantStart, slot.StartAt)
		}
		if !slot.EndAt.Equal(wantStart.Add(30 * time.Minute)) {
			t.Fatalf("slot %d: expected 30 minute width, got end %v", i, slot.EndAt)
		}
		if !slot.IsAvailable {
			t.Fatalf("slot %d: expected available", i)
		}
	}
}

func TestBuildSlotsDropsPartialTrailingSlot(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// 09:00-09:45 fits one whole slot; the trailing 15 minutes are dropped.
	slots := buildSlots(7, []models.Availability{
		buildAvailability(1, 1, "09:00", "09:45"),
	}, day, day, now)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].EndAt.Minute() != 30 {
		t.Fatalf("expected slot to end at 09:30, got %v", slots[0].EndAt)
	}
}

func TestBuildSlotsMarksShortNoticeSlotsUnavailable(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	av := buildAvailability(1, 1, "09:00", "11:00")
	av.MinAdvanceHours = 2
	// 08:00 on the same day: 09:00 and 09:30 fall inside the notice
	// window, 10:00 onward are bookable.
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	slots := buildSlots(7, []models.Availability{av}, day, day, now)

	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if slots[0].IsAvailable || slots[1].IsAvailable {
		t.Fatalf("expected first two slots unavailable, got %v %v", slots[0].IsAvailable, slots[1].IsAvailable)
	}
	if !slots[2].IsAvailable || !slots[3].IsAvailable {
		t.Fatalf("expected later slots available, got %v %v", slots[2].IsAvailable, slots[3].IsAvailable)
	}
}

func TestBuildSlotsSkipsInactiveAndNonMatchingDays(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	inactive := buildAvailability(1, 1, "09:00", "10:00")
	inactive.IsActive = false
	tuesday := buildAvailability(2, 2, "09:00", "10:00")

	slots := buildSlots(7, []models.Availability{inactive, tuesday}, day, day, now)
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestBuildSlotsSpecificDateOverridesWeekday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	av := models.Availability{
		ID:                 3,
		InstructorID:       7,
		SpecificDate:       &date,
		StartTime:          "14:00",
		EndTime:            "15:00",
		MaxSessionsPerSlot: 2,
		Timezone:           "UTC",
		IsActive:           true,
	}

	slots := buildSlots(7, []models.Availability{av}, day, day, now)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].MaxBookings != 2 {
		t.Fatalf("expected max bookings 2, got %d", slots[0].MaxBookings)
	}
}

func TestBuildSlotsConvertsZonedWindowsToUTC(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	av := buildAvailability(4, 1, "09:00", "10:00")
	av.Timezone = "America/New_York"

	slots := buildSlots(7, []models.Availability{av}, day, day, now)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	// 09:00 EST is 14:00 UTC.
	if slots[0].StartAt.Hour() != 14 {
		t.Fatalf("expected 14:00 UTC start, got %v", slots[0].StartAt)
	}
}

func TestParseClockRejectsMalformedValues(t *testing.T) {
	cases := []string{"", "9", "09:60", "24:00", "ab:cd", "09:00:00"}
	for _, value := range cases {
		if _, _, err := parseClock(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
	hour, minute, err := parseClock(" 09:30 ")
	if err != nil {
		t.Fatalf("parseClock: %v", err)
	}
	if hour != 9 || minute != 30 {
		t.Fatalf("expected 9:30, got %d:%d", hour, minute)
	}
}

func TestClockRangeValidRequiresStartBeforeEnd(t *testing.T) {
	if err := ClockRangeValid("09:00", "09:00"); err == nil {
		t.Fatal("expected error for equal times")
	}
	if err := ClockRangeValid("10:00", "09:00"); err == nil {
		t.Fatal("expected error for inverted range")
	}
	if err := ClockRangeValid("09:00", "17:30"); err != nil {
		t.Fatalf("ClockRangeValid: %v", err)
	}
}
