package services

import (
	"context"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
)

// NotificationPusher delivers a notification to the user's live
// connections, if any. Persistence never depends on it.
type NotificationPusher interface {
	Push(userID int64, notification models.Notification)
}

type NotificationService struct {
	notifRepo *repository.NotificationRepository
	pusher    NotificationPusher
}

func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	pusher NotificationPusher,
) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, pusher: pusher}
}

func (s *NotificationService) List(
	ctx context.Context,
	userID int64,
	unreadOnly bool,
	limit, offset int,
) ([]models.Notification, int, error) {
	if userID <= 0 || limit < 1 || offset < 0 {
		return nil, 0, ErrInvalidInput
	}
	return s.notifRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *NotificationService) Create(
	ctx context.Context,
	userID int64,
	nType models.NotificationType,
	title, body string,
) (*models.Notification, error) {
	if userID <= 0 || title == "" {
		return nil, ErrInvalidInput
	}
	notification, err := s.notifRepo.Create(ctx, userID, nType, title, body)
	if err != nil {
		return nil, err
	}
	if s.pusher != nil {
		s.pusher.Push(userID, *notification)
	}
	return notification, nil
}

// MarkAllRead is idempotent; it returns how many rows actually flipped.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrInvalidInput
	}
	return s.notifRepo.MarkAllRead(ctx, userID)
}
