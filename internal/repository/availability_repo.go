package repository

import (
	"context"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateAvailabilityInput struct {
	InstructorID        int64
	DayOfWeek           *int
	SpecificDate        *time.Time
	StartTime           string
	EndTime             string
	MaxSessionsPerSlot  int
	SlotDurationMinutes int
	MinAdvanceHours     int
	BufferMinutes       int
	Timezone            string
	AutoAccept          bool
}

type UpdateAvailabilityInput struct {
	StartTime          string
	EndTime            string
	IsActive           bool
	MaxSessionsPerSlot int
	MinAdvanceHours    int
	BufferMinutes      int
	AutoAccept         bool
}

type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = `id, instructor_id, day_of_week, specific_date, start_time, end_time,
		is_active, max_sessions_per_slot, slot_duration_minutes, min_advance_hours,
		buffer_minutes, timezone, auto_accept, created_at, updated_at`

func (r *AvailabilityRepository) scan(row pgx.Row) (*models.Availability, error) {
	var a models.Availability
	err := row.Scan(
		&a.ID,
		&a.InstructorID,
		&a.DayOfWeek,
		&a.SpecificDate,
		&a.StartTime,
		&a.EndTime,
		&a.IsActive,
		&a.MaxSessionsPerSlot,
		&a.SlotDurationMinutes,
		&a.MinAdvanceHours,
		&a.BufferMinutes,
		&a.Timezone,
		&a.AutoAccept,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AvailabilityRepository) Create(
	ctx context.Context,
	input CreateAvailabilityInput,
) (*models.Availability, error) {
	query := `
		INSERT INTO availabilities (
			instructor_id, day_of_week, specific_date, start_time, end_time,
			max_sessions_per_slot, slot_duration_minutes, min_advance_hours,
			buffer_minutes, timezone, auto_accept
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + availabilityColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		input.InstructorID,
		input.DayOfWeek,
		input.SpecificDate,
		input.StartTime,
		input.EndTime,
		input.MaxSessionsPerSlot,
		input.SlotDurationMinutes,
		input.MinAdvanceHours,
		input.BufferMinutes,
		input.Timezone,
		input.AutoAccept,
	))
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availabilities WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *AvailabilityRepository) ListByInstructor(
	ctx context.Context,
	instructorID int64,
	activeOnly bool,
) ([]models.Availability, error) {
	query := `SELECT ` + availabilityColumns + `
		FROM availabilities
		WHERE instructor_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availabilities := make([]models.Availability, 0)
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		availabilities = append(availabilities, *a)
	}
	return availabilities, rows.Err()
}

func (r *AvailabilityRepository) Update(
	ctx context.Context,
	id int64,
	input UpdateAvailabilityInput,
) (*models.Availability, error) {
	query := `
		UPDATE availabilities
		SET start_time = $2, end_time = $3, is_active = $4, max_sessions_per_slot = $5,
			min_advance_hours = $6, buffer_minutes = $7, auto_accept = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + availabilityColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		id,
		input.StartTime,
		input.EndTime,
		input.IsActive,
		input.MaxSessionsPerSlot,
		input.MinAdvanceHours,
		input.BufferMinutes,
		input.AutoAccept,
	))
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
