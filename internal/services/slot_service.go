package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Slots are sliced on a fixed grid, coarser than most offering durations.
const slotIncrement = 30 * time.Minute

type SlotService struct {
	db               *pgxpool.Pool
	availabilityRepo *repository.AvailabilityRepository
	slotRepo         *repository.SlotRepository
}

func NewSlotService(
	db *pgxpool.Pool,
	availabilityRepo *repository.AvailabilityRepository,
	slotRepo *repository.SlotRepository,
) *SlotService {
	return &SlotService{
		db:               db,
		availabilityRepo: availabilityRepo,
		slotRepo:         slotRepo,
	}
}

// CreateAvailability validates the window before it reaches storage:
// malformed "HH:MM" strings are rejected here so the generator never has
// to handle them.
func (s *SlotService) CreateAvailability(
	ctx context.Context,
	input repository.CreateAvailabilityInput,
) (*models.Availability, error) {
	if input.InstructorID <= 0 || input.MinAdvanceHours < 0 || input.BufferMinutes < 0 {
		return nil, ErrInvalidInput
	}
	if input.MaxSessionsPerSlot < 1 {
		return nil, ErrInvalidInput
	}
	if (input.DayOfWeek == nil) == (input.SpecificDate == nil) {
		return nil, ErrInvalidInput
	}
	if input.DayOfWeek != nil && (*input.DayOfWeek < 0 || *input.DayOfWeek > 6) {
		return nil, ErrInvalidInput
	}
	if err := ClockRangeValid(input.StartTime, input.EndTime); err != nil {
		return nil, ErrInvalidInput
	}
	if input.Timezone == "" {
		input.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return nil, ErrInvalidInput
	}
	if input.SlotDurationMinutes <= 0 {
		input.SlotDurationMinutes = int(slotIncrement / time.Minute)
	}
	return s.availabilityRepo.Create(ctx, input)
}

func (s *SlotService) UpdateAvailability(
	ctx context.Context,
	id int64,
	input repository.UpdateAvailabilityInput,
) (*models.Availability, error) {
	if input.MinAdvanceHours < 0 || input.BufferMinutes < 0 || input.MaxSessionsPerSlot < 1 {
		return nil, ErrInvalidInput
	}
	if err := ClockRangeValid(input.StartTime, input.EndTime); err != nil {
		return nil, ErrInvalidInput
	}
	return s.availabilityRepo.Update(ctx, id, input)
}

func (s *SlotService) DeleteAvailability(ctx context.Context, id int64) error {
	return s.availabilityRepo.Delete(ctx, id)
}

func (s *SlotService) ListAvailability(
	ctx context.Context,
	instructorID int64,
	activeOnly bool,
) ([]models.Availability, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.availabilityRepo.ListByInstructor(ctx, instructorID, activeOnly)
}

// GenerateSlots rebuilds the slot set for an instructor over [from, to]
// (dates, inclusive). The stored set for the range is replaced, not
// appended to; booked slots survive the rebuild.
func (s *SlotService) GenerateSlots(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
) ([]models.TimeSlot, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	from = truncateToDay(from)
	to = truncateToDay(to)
	if from.After(to) {
		return nil, ErrInvalidInput
	}

	availabilities, err := s.availabilityRepo.ListByInstructor(ctx, instructorID, true)
	if err != nil {
		return nil, err
	}

	slots := buildSlots(instructorID, availabilities, from, to, time.Now().UTC())

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSlotRepo := repository.NewSlotRepository(tx)
	rangeEnd := to.AddDate(0, 0, 1)
	if err := txSlotRepo.ReplaceRange(ctx, instructorID, from, rangeEnd, slots); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *SlotService) ListSlots(
	ctx context.Context,
	instructorID int64,
	date time.Time,
) ([]models.TimeSlot, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.slotRepo.ListByInstructorDate(ctx, instructorID, truncateToDay(date))
}

// buildSlots is the pure generation core: it walks each day of the range,
// picks matching active availability windows and slices them into
// fixed-width slots. Partial trailing slots are dropped. Slots violating
// the window's advance-notice rule are produced but start unavailable.
func buildSlots(
	instructorID int64,
	availabilities []models.Availability,
	from, to time.Time,
	now time.Time,
) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, av := range availabilities {
			if !av.IsActive || !availabilityCoversDay(av, day) {
				continue
			}

			loc, err := time.LoadLocation(av.Timezone)
			if err != nil {
				loc = time.UTC
			}
			startHour, startMin, err := parseClock(av.StartTime)
			if err != nil {
				continue
			}
			endHour, endMin, err := parseClock(av.EndTime)
			if err != nil {
				continue
			}

			windowStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, loc)
			windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, loc)
			earliest := now.Add(time.Duration(av.MinAdvanceHours) * time.Hour)

			for cursor := windowStart; !cursor.Add(slotIncrement).After(windowEnd); cursor = cursor.Add(slotIncrement) {
				startAt := cursor.UTC()
				slots = append(slots, models.TimeSlot{
					AvailabilityID:  av.ID,
					InstructorID:    instructorID,
					SlotDate:        day,
					StartAt:         startAt,
					EndAt:           cursor.Add(slotIncrement).UTC(),
					DurationMinutes: int(slotIncrement / time.Minute),
					IsAvailable:     !startAt.Before(earliest),
					MaxBookings:     av.MaxSessionsPerSlot,
					Timezone:        av.Timezone,
				})
			}
		}
	}
	return slots
}

func availabilityCoversDay(av models.Availability, day time.Time) bool {
	if av.SpecificDate != nil {
		d := *av.SpecificDate
		return d.Year() == day.Year() && d.Month() == day.Month() && d.Day() == day.Day()
	}
	if av.DayOfWeek != nil {
		return int(day.Weekday()) == *av.DayOfWeek
	}
	return false
}

// parseClock parses "HH:MM" time-of-day strings.
func parseClock(value string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", value)
	}
	return hour, minute, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClockRangeValid checks an HH:MM pair at the availability-creation
// boundary so the generator never sees malformed windows.
func ClockRangeValid(start, end string) error {
	sh, sm, err := parseClock(start)
	if err != nil {
		return err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return err
	}
	if sh*60+sm >= eh*60+em {
		return errors.New("start time must be before end time")
	}
	return nil
}
