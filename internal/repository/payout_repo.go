package repository

import (
	"context"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreatePayoutInput struct {
	InstructorID int64
	Amount       float64
	PlatformFee  float64
	NetAmount    float64
	Currency     string
	ScheduledFor time.Time
}

type PayoutRepository struct {
	db DBTX
}

func NewPayoutRepository(db DBTX) *PayoutRepository {
	return &PayoutRepository{db: db}
}

const payoutColumns = `id, instructor_id, amount, platform_fee, net_amount, currency,
		status, scheduled_for, paid_at, created_at, updated_at`

func (r *PayoutRepository) scan(row pgx.Row) (*models.Payout, error) {
	var p models.Payout
	err := row.Scan(
		&p.ID,
		&p.InstructorID,
		&p.Amount,
		&p.PlatformFee,
		&p.NetAmount,
		&p.Currency,
		&p.Status,
		&p.ScheduledFor,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) Create(ctx context.Context, input CreatePayoutInput) (*models.Payout, error) {
	query := `
		INSERT INTO payouts (instructor_id, amount, platform_fee, net_amount, currency, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + payoutColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		input.InstructorID,
		input.Amount,
		input.PlatformFee,
		input.NetAmount,
		input.Currency,
		input.ScheduledFor,
	))
}

func (r *PayoutRepository) GetByID(ctx context.Context, id int64) (*models.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *PayoutRepository) ListByInstructor(
	ctx context.Context,
	instructorID int64,
) ([]models.Payout, error) {
	query := `SELECT ` + payoutColumns + `
		FROM payouts
		WHERE instructor_id = $1
		ORDER BY id DESC`

	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]models.Payout, 0)
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, rows.Err()
}

// MarkPaid transitions pending to paid and stamps paid_at in the same
// statement.
func (r *PayoutRepository) MarkPaid(ctx context.Context, id int64) (*models.Payout, error) {
	query := `
		UPDATE payouts
		SET status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + payoutColumns
	return r.scan(r.db.QueryRow(ctx, query, id))
}
