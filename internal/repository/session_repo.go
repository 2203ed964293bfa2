package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateSessionInput struct {
	BookingID        int64
	OfferingID       int64
	InstructorID     int64
	StudentID        int64
	ScheduledStart   time.Time
	ScheduledEnd     time.Time
	InstructorPayout float64
	PlatformFee      float64
	Currency         string
}

type SessionListFilter struct {
	InstructorID int64
	StudentID    int64
	Status       models.SessionStatus
	From         time.Time
	To           time.Time
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, booking_id, offering_id, instructor_id, student_id,
		scheduled_start, scheduled_end, status, instructor_payout, platform_fee,
		currency, instructor_notes, payout_id, rating, created_at, updated_at`

func (r *SessionRepository) scan(row pgx.Row) (*models.LiveSession, error) {
	var s models.LiveSession
	err := row.Scan(
		&s.ID,
		&s.BookingID,
		&s.OfferingID,
		&s.InstructorID,
		&s.StudentID,
		&s.ScheduledStart,
		&s.ScheduledEnd,
		&s.Status,
		&s.InstructorPayout,
		&s.PlatformFee,
		&s.Currency,
		&s.InstructorNotes,
		&s.PayoutID,
		&s.Rating,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.LiveSession, error) {
	query := `
		INSERT INTO live_sessions (
			booking_id, offering_id, instructor_id, student_id, scheduled_start,
			scheduled_end, instructor_payout, platform_fee, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + sessionColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		input.BookingID,
		input.OfferingID,
		input.InstructorID,
		input.StudentID,
		input.ScheduledStart,
		input.ScheduledEnd,
		input.InstructorPayout,
		input.PlatformFee,
		input.Currency,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.LiveSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *SessionRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.LiveSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE booking_id = $1`
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.LiveSession, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.InstructorID > 0 {
		args = append(args, filter.InstructorID)
		whereParts = append(whereParts, fmt.Sprintf("instructor_id = $%d", len(args)))
	}
	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		whereParts = append(whereParts, fmt.Sprintf("scheduled_start >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		whereParts = append(whereParts, fmt.Sprintf("scheduled_start <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT `+sessionColumns+`
		FROM live_sessions
		WHERE %s
		ORDER BY scheduled_start ASC, id ASC`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.LiveSession, 0)
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) ListByBookingIDs(
	ctx context.Context,
	bookingIDs []int64,
) (map[int64]models.LiveSession, error) {
	sessions := make(map[int64]models.LiveSession, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return sessions, nil
	}

	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE booking_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sessions[s.BookingID] = *s
	}
	return sessions, rows.Err()
}

// ListForPayout locks the named sessions so payout creation can verify and
// stamp them without racing a concurrent payout.
func (r *SessionRepository) ListForPayout(
	ctx context.Context,
	sessionIDs []int64,
) ([]models.LiveSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE id = ANY($1)
		ORDER BY id ASC
		FOR UPDATE`
	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.LiveSession, 0, len(sessionIDs))
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + sessionColumns
	return r.scan(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

func (r *SessionRepository) UpdateNotes(
	ctx context.Context,
	id int64,
	notes *string,
) (*models.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET instructor_notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return r.scan(r.db.QueryRow(ctx, query, id, notes))
}

func (r *SessionRepository) SetPayoutID(
	ctx context.Context,
	sessionIDs []int64,
	payoutID int64,
) error {
	query := `
		UPDATE live_sessions
		SET payout_id = $2, updated_at = NOW()
		WHERE id = ANY($1) AND payout_id IS NULL
	`
	tag, err := r.db.Exec(ctx, query, sessionIDs, payoutID)
	if err != nil {
		return err
	}
	if int(tag.RowsAffected()) != len(sessionIDs) {
		return pgx.ErrNoRows
	}
	return nil
}

// SumEarnings totals the instructor's share of completed sessions whose
// scheduled start falls in [from, to].
func (r *SessionRepository) SumEarnings(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
) (float64, error) {
	query := `
		SELECT COALESCE(SUM(instructor_payout), 0)
		FROM live_sessions
		WHERE instructor_id = $1
		  AND status = 'completed'
		  AND scheduled_start >= $2
		  AND scheduled_start <= $3
	`
	var total float64
	if err := r.db.QueryRow(ctx, query, instructorID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
