package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreateOfferingInput struct {
	InstructorID       int64
	Title              string
	Description        *string
	TopicType          models.TopicType
	SessionType        models.SessionType
	Format             models.SessionFormat
	DurationMinutes    int
	Capacity           int
	BasePrice          float64
	Currency           string
	IsPublic           bool
	RequiresApproval   bool
	RecordingEnabled   bool
	WhiteboardEnabled  bool
	ChatEnabled        bool
	ScreenShareEnabled bool
	CancellationPolicy models.CancellationPolicy
	Tags               []string
	Prerequisites      []string
	Materials          []string
}

type UpdateOfferingInput struct {
	Title           string
	Description     *string
	DurationMinutes int
	BasePrice       float64
	IsPublic        bool
	Tags            []string
	Prerequisites   []string
	Materials       []string
}

type OfferingListFilter struct {
	InstructorID int64
	ActiveOnly   bool
	PublicOnly   bool
}

type OfferingRepository struct {
	db DBTX
}

func NewOfferingRepository(db DBTX) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringColumns = `id, instructor_id, title, description, topic_type, session_type, format,
		duration_minutes, capacity, base_price, currency, is_active, is_public,
		requires_approval, recording_enabled, whiteboard_enabled, chat_enabled,
		screen_share_enabled, cancellation_policy, tags, prerequisites, materials,
		created_at, updated_at`

func (r *OfferingRepository) scan(row pgx.Row) (*models.SessionOffering, error) {
	var o models.SessionOffering
	err := row.Scan(
		&o.ID,
		&o.InstructorID,
		&o.Title,
		&o.Description,
		&o.TopicType,
		&o.SessionType,
		&o.Format,
		&o.DurationMinutes,
		&o.Capacity,
		&o.BasePrice,
		&o.Currency,
		&o.IsActive,
		&o.IsPublic,
		&o.RequiresApproval,
		&o.RecordingEnabled,
		&o.WhiteboardEnabled,
		&o.ChatEnabled,
		&o.ScreenShareEnabled,
		&o.CancellationPolicy,
		&o.Tags,
		&o.Prerequisites,
		&o.Materials,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferingRepository) Create(
	ctx context.Context,
	input CreateOfferingInput,
) (*models.SessionOffering, error) {
	query := `
		INSERT INTO offerings (
			instructor_id, title, description, topic_type, session_type, format,
			duration_minutes, capacity, base_price, currency, is_public,
			requires_approval, recording_enabled, whiteboard_enabled, chat_enabled,
			screen_share_enabled, cancellation_policy, tags, prerequisites, materials
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + offeringColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		input.InstructorID,
		input.Title,
		input.Description,
		input.TopicType,
		input.SessionType,
		input.Format,
		input.DurationMinutes,
		input.Capacity,
		input.BasePrice,
		input.Currency,
		input.IsPublic,
		input.RequiresApproval,
		input.RecordingEnabled,
		input.WhiteboardEnabled,
		input.ChatEnabled,
		input.ScreenShareEnabled,
		input.CancellationPolicy,
		input.Tags,
		input.Prerequisites,
		input.Materials,
	))
}

func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.SessionOffering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *OfferingRepository) List(
	ctx context.Context,
	filter OfferingListFilter,
) ([]models.SessionOffering, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.InstructorID > 0 {
		args = append(args, filter.InstructorID)
		whereParts = append(whereParts, fmt.Sprintf("instructor_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		whereParts = append(whereParts, "is_active")
	}
	if filter.PublicOnly {
		whereParts = append(whereParts, "is_public")
	}

	query := fmt.Sprintf(`SELECT `+offeringColumns+`
		FROM offerings
		WHERE %s
		ORDER BY id ASC`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := make([]models.SessionOffering, 0)
	for rows.Next() {
		o, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, *o)
	}
	return offerings, rows.Err()
}

func (r *OfferingRepository) Update(
	ctx context.Context,
	id int64,
	input UpdateOfferingInput,
) (*models.SessionOffering, error) {
	query := `
		UPDATE offerings
		SET title = $2, description = $3, duration_minutes = $4, base_price = $5,
			is_public = $6, tags = $7, prerequisites = $8, materials = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + offeringColumns
	return r.scan(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Title,
		input.Description,
		input.DurationMinutes,
		input.BasePrice,
		input.IsPublic,
		input.Tags,
		input.Prerequisites,
		input.Materials,
	))
}

// Deactivate soft-disables an offering; rows are never deleted while
// historical bookings reference them.
func (r *OfferingRepository) Deactivate(ctx context.Context, id int64) (*models.SessionOffering, error) {
	query := `
		UPDATE offerings
		SET is_active = FALSE, is_public = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + offeringColumns
	return r.scan(r.db.QueryRow(ctx, query, id))
}

// Totals recomputes booking and revenue aggregates from source rows.
func (r *OfferingRepository) Totals(ctx context.Context, id int64) (*models.OfferingTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM booking_requests WHERE offering_id = $1 AND status = 'accepted'),
			COALESCE((SELECT SUM(instructor_payout + platform_fee) FROM live_sessions
				WHERE offering_id = $1 AND status = 'completed'), 0),
			COALESCE((SELECT AVG(rating) FROM live_sessions
				WHERE offering_id = $1 AND rating IS NOT NULL), 0)
	`
	var totals models.OfferingTotals
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&totals.TotalBookings,
		&totals.TotalRevenue,
		&totals.AverageRating,
	); err != nil {
		return nil, err
	}
	return &totals, nil
}
