package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateBookingInput struct {
	OfferingID         int64
	StudentID          int64
	BookingMode        models.BookingMode
	PreferredStart     time.Time
	AlternativeStarts  []time.Time
	CustomTopic        *string
	CustomDescription  *string
	CustomRequirements *string
	Priority           models.BookingPriority
	OfferedPrice       float64
	Currency           string
	ExpiresAt          time.Time
	StudentMessage     *string
}

type BookingListFilter struct {
	StudentID   int64
	OfferingID  int64
	Status      models.BookingStatus
	ExpiredOnly bool
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, offering_id, student_id, booking_mode, preferred_start,
		alternative_starts, custom_topic, custom_description, custom_requirements,
		status, priority, reschedule_count, offered_price, currency, payment_status,
		expires_at, student_message, status_reason, created_at, updated_at`

func (r *BookingRepository) scan(row pgx.Row) (*models.BookingRequest, error) {
	var b models.BookingRequest
	err := row.Scan(
		&b.ID,
		&b.OfferingID,
		&b.StudentID,
		&b.BookingMode,
		&b.PreferredStart,
		&b.AlternativeStarts,
		&b.CustomTopic,
		&b.CustomDescription,
		&b.CustomRequirements,
		&b.Status,
		&b.Priority,
		&b.RescheduleCount,
		&b.OfferedPrice,
		&b.Currency,
		&b.PaymentStatus,
		&b.ExpiresAt,
		&b.StudentMessage,
		&b.StatusReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Create(
	ctx context.Context,
	input CreateBookingInput,
) (*models.BookingRequest, error) {
	query := `
		INSERT INTO booking_requests (
			offering_id, student_id, booking_mode, preferred_start, alternative_starts,
			custom_topic, custom_description, custom_requirements, priority,
			offered_price, currency, expires_at, student_message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + bookingColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		input.OfferingID,
		input.StudentID,
		input.BookingMode,
		input.PreferredStart,
		input.AlternativeStarts,
		input.CustomTopic,
		input.CustomDescription,
		input.CustomRequirements,
		input.Priority,
		input.OfferedPrice,
		input.Currency,
		input.ExpiresAt,
		input.StudentMessage,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests WHERE id = $1 FOR UPDATE`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *BookingRepository) List(
	ctx context.Context,
	filter BookingListFilter,
) ([]models.BookingRequest, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.OfferingID > 0 {
		args = append(args, filter.OfferingID)
		whereParts = append(whereParts, fmt.Sprintf("offering_id = $%d", len(args)))
	}
	if filter.ExpiredOnly {
		whereParts = append(whereParts,
			"(status = 'expired' OR (status = 'pending' AND expires_at < NOW()))")
	} else if filter.Status == models.BookingStatusPending {
		// Rows past their TTL read as expired even before the sweeper
		// relabels them, so a pending filter must not surface them.
		whereParts = append(whereParts, "status = 'pending'", "expires_at >= NOW()")
	} else if filter.Status != "" {
		args = append(args, filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT `+bookingColumns+`
		FROM booking_requests
		WHERE %s
		ORDER BY preferred_start ASC, id ASC`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.BookingRequest, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ListPendingForInstructor returns live pending requests across all of an
// instructor's offerings; requests past their TTL are excluded.
func (r *BookingRepository) ListPendingForInstructor(
	ctx context.Context,
	instructorID int64,
) ([]models.BookingRequest, error) {
	query := `
		SELECT ` + bookingColumnsPrefixed + `
		FROM booking_requests b
		JOIN offerings o ON o.id = b.offering_id
		WHERE o.instructor_id = $1 AND b.status = 'pending' AND b.expires_at >= NOW()
		ORDER BY b.priority DESC, b.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.BookingRequest, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus models.BookingStatus,
	nextStatus models.BookingStatus,
	reason *string,
) (*models.BookingRequest, error) {
	query := `
		UPDATE booking_requests
		SET status = $3, status_reason = COALESCE($4, status_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns
	return r.scan(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus, reason))
}

func (r *BookingRepository) UpdatePaymentStatus(
	ctx context.Context,
	id int64,
	status models.BookingPaymentStatus,
) (*models.BookingRequest, error) {
	query := `
		UPDATE booking_requests
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns
	return r.scan(r.db.QueryRow(ctx, query, id, status))
}

// ExpireStale flips pending requests past their TTL to expired and returns
// the affected rows so the caller can notify and release capacity.
func (r *BookingRepository) ExpireStale(ctx context.Context, now time.Time) ([]models.BookingRequest, error) {
	query := `
		UPDATE booking_requests
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending' AND expires_at < $1
		RETURNING ` + bookingColumns
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expired := make([]models.BookingRequest, 0)
	for rows.Next() {
		b, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

func (r *BookingRepository) CountPendingForInstructor(
	ctx context.Context,
	instructorID int64,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM booking_requests b
		JOIN offerings o ON o.id = b.offering_id
		WHERE o.instructor_id = $1 AND b.status = 'pending' AND b.expires_at >= NOW()
	`
	var count int
	if err := r.db.QueryRow(ctx, query, instructorID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// AverageOfferedPrice is the mean bid across an instructor's requests in a
// window, zero when there are none.
func (r *BookingRepository) AverageOfferedPrice(
	ctx context.Context,
	instructorID int64,
	from, to time.Time,
) (float64, error) {
	query := `
		SELECT COALESCE(AVG(b.offered_price), 0)
		FROM booking_requests b
		JOIN offerings o ON o.id = b.offering_id
		WHERE o.instructor_id = $1 AND b.created_at >= $2 AND b.created_at <= $3
	`
	var avg float64
	if err := r.db.QueryRow(ctx, query, instructorID, from, to).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

var bookingColumnsPrefixed = prefixColumns(bookingColumns, "b")

func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
