package repository

import (
	"context"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, body, is_read, created_at`

func (r *NotificationRepository) scan(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	userID int64,
	nType models.NotificationType,
	title, body string,
) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns
	return r.scan(r.db.QueryRow(ctx, query, userID, nType, title, body))
}

func (r *NotificationRepository) ListByUser(
	ctx context.Context,
	userID int64,
	unreadOnly bool,
	limit, offset int,
) ([]models.Notification, int, error) {
	where := ` WHERE user_id = $1`
	if unreadOnly {
		where += ` AND NOT is_read`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificationColumns + `
		FROM notifications` + where + `
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, rows.Err()
}

// MarkAllRead is idempotent; re-running it is a no-op.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
