package repository

import (
	"context"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const intentColumns = `id, booking_id, idempotency_key, amount, currency, status,
		refund_reason, created_at, updated_at`

func (r *PaymentRepository) scan(row pgx.Row) (*models.PaymentIntent, error) {
	var p models.PaymentIntent
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.IdempotencyKey,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.RefundReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert keeps exactly one intent per booking. A retry resets the status
// and amount but keeps the row's identity and idempotency key.
func (r *PaymentRepository) Upsert(
	ctx context.Context,
	bookingID int64,
	idempotencyKey string,
	amount float64,
	currency string,
) (*models.PaymentIntent, error) {
	query := `
		INSERT INTO payment_intents (booking_id, idempotency_key, amount, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO UPDATE
		SET amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			status = 'requires_payment_method',
			updated_at = NOW()
		RETURNING ` + intentColumns
	return r.scan(r.db.QueryRow(ctx, query, bookingID, idempotencyKey, amount, currency))
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE booking_id = $1`
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *PaymentRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID int64) (*models.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE booking_id = $1 FOR UPDATE`
	return r.scan(r.db.QueryRow(ctx, query, bookingID))
}

func (r *PaymentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id int64,
	currentStatus models.PaymentIntentStatus,
	nextStatus models.PaymentIntentStatus,
) (*models.PaymentIntent, error) {
	query := `
		UPDATE payment_intents
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + intentColumns
	return r.scan(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

func (r *PaymentRepository) MarkRefunded(
	ctx context.Context,
	bookingID int64,
	reason string,
) (*models.PaymentIntent, error) {
	query := `
		UPDATE payment_intents
		SET status = 'refunded', refund_reason = $2, updated_at = NOW()
		WHERE booking_id = $1 AND status = 'succeeded'
		RETURNING ` + intentColumns
	return r.scan(r.db.QueryRow(ctx, query, bookingID, reason))
}
