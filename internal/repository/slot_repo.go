package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	db DBTX
}

func NewSlotRepository(db DBTX) *SlotRepository {
	return &SlotRepository{db: db}
}

const slotColumns = `id, availability_id, instructor_id, slot_date, start_at, end_at,
		duration_minutes, is_available, is_booked, is_blocked, max_bookings,
		current_bookings, timezone`

func (r *SlotRepository) scan(row pgx.Row) (*models.TimeSlot, error) {
	var s models.TimeSlot
	err := row.Scan(
		&s.ID,
		&s.AvailabilityID,
		&s.InstructorID,
		&s.SlotDate,
		&s.StartAt,
		&s.EndAt,
		&s.DurationMinutes,
		&s.IsAvailable,
		&s.IsBooked,
		&s.IsBlocked,
		&s.MaxBookings,
		&s.CurrentBookings,
		&s.Timezone,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReplaceRange swaps out the generated slots for an instructor over the
// generation days [from, to). Matching on slot_date rather than start_at
// keeps zoned evening windows, whose UTC starts spill into the next day,
// inside the range being regenerated. Booked slots survive so claimed
// capacity is never lost.
func (r *SlotRepository) ReplaceRange(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
	slots []models.TimeSlot,
) error {
	deleteQuery := `
		DELETE FROM time_slots
		WHERE instructor_id = $1 AND slot_date >= $2 AND slot_date < $3 AND NOT is_booked
	`
	if _, err := r.db.Exec(ctx, deleteQuery, instructorID, from, to); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO time_slots (
			availability_id, instructor_id, slot_date, start_at, end_at,
			duration_minutes, is_available, max_bookings, timezone
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (availability_id, start_at) DO NOTHING
	`
	for _, slot := range slots {
		if _, err := r.db.Exec(
			ctx,
			insertQuery,
			slot.AvailabilityID,
			slot.InstructorID,
			slot.SlotDate,
			slot.StartAt,
			slot.EndAt,
			slot.DurationMinutes,
			slot.IsAvailable,
			slot.MaxBookings,
			slot.Timezone,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SlotRepository) ListByInstructorDate(
	ctx context.Context,
	instructorID int64,
	date time.Time,
) ([]models.TimeSlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM time_slots
		WHERE instructor_id = $1 AND slot_date = $2
		ORDER BY start_at ASC`

	rows, err := r.db.Query(ctx, query, instructorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]models.TimeSlot, 0)
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

func (r *SlotRepository) GetByInstructorStart(
	ctx context.Context,
	instructorID int64,
	startAt time.Time,
) (*models.TimeSlot, error) {
	query := `SELECT ` + slotColumns + `
		FROM time_slots
		WHERE instructor_id = $1 AND start_at = $2`
	return r.scan(r.db.QueryRow(ctx, query, instructorID, startAt))
}

// ClaimCapacity increments a slot's booking counter, failing with no rows
// when the slot is full, blocked, unavailable or inside the availability's
// advance-notice window as of claim time. All accepts go through here;
// nothing else writes the counters.
func (r *SlotRepository) ClaimCapacity(
	ctx context.Context,
	instructorID int64,
	startAt time.Time,
) (*models.TimeSlot, error) {
	query := `
		UPDATE time_slots
		SET current_bookings = current_bookings + 1,
			is_booked = current_bookings + 1 >= max_bookings
		WHERE instructor_id = $1 AND start_at = $2
		  AND is_available AND NOT is_blocked
		  AND current_bookings < max_bookings
		  AND start_at >= NOW() + make_interval(hours => (
			SELECT a.min_advance_hours FROM availabilities a
			WHERE a.id = time_slots.availability_id))
		RETURNING ` + slotColumns
	return r.scan(r.db.QueryRow(ctx, query, instructorID, startAt))
}

// MeetsAdvanceNotice reports whether booking the instructor's slot at
// startAt still honors its availability's minimum advance hours measured
// from now. A missing slot row passes; capacity claiming settles that
// case later.
func (r *SlotRepository) MeetsAdvanceNotice(
	ctx context.Context,
	instructorID int64,
	startAt, now time.Time,
) (bool, error) {
	query := `
		SELECT ts.start_at >= $3 + make_interval(hours => a.min_advance_hours)
		FROM time_slots ts
		JOIN availabilities a ON a.id = ts.availability_id
		WHERE ts.instructor_id = $1 AND ts.start_at = $2`

	var ok bool
	err := r.db.QueryRow(ctx, query, instructorID, startAt, now).Scan(&ok)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseCapacity undoes a claim after a cancellation.
func (r *SlotRepository) ReleaseCapacity(
	ctx context.Context,
	instructorID int64,
	startAt time.Time,
) (*models.TimeSlot, error) {
	query := `
		UPDATE time_slots
		SET current_bookings = GREATEST(current_bookings - 1, 0),
			is_booked = FALSE
		WHERE instructor_id = $1 AND start_at = $2
		RETURNING ` + slotColumns
	return r.scan(r.db.QueryRow(ctx, query, instructorID, startAt))
}

func (r *SlotRepository) SetBlocked(
	ctx context.Context,
	slotID int64,
	blocked bool,
) (*models.TimeSlot, error) {
	query := `
		UPDATE time_slots
		SET is_blocked = $2
		WHERE id = $1
		RETURNING ` + slotColumns
	return r.scan(r.db.QueryRow(ctx, query, slotID, blocked))
}
