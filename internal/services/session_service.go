package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
}

func NewSessionService(db *pgxpool.Pool, sessionRepo *repository.SessionRepository) *SessionService {
	return &SessionService{db: db, sessionRepo: sessionRepo}
}

// CompleteSession is only legal once the scheduled window has passed.
func (s *SessionService) CompleteSession(ctx context.Context, id int64) (*models.LiveSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, ErrInvalidStateTransition
	}
	if session.ScheduledEnd.After(time.Now().UTC()) {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	completed, err := repository.NewSessionRepository(tx).UpdateStatusIfCurrent(
		ctx, id, models.SessionStatusScheduled, models.SessionStatusCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if _, err := repository.NewNotificationRepository(tx).Create(
		ctx, completed.InstructorID, models.NotificationSessionCompleted,
		"Session completed",
		fmt.Sprintf("Session %d completed; %.2f %s is pending payout",
			completed.ID, completed.InstructorPayout, completed.Currency),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return completed, nil
}

func (s *SessionService) UpdateNotes(ctx context.Context, id int64, notes *string) (*models.LiveSession, error) {
	return s.sessionRepo.UpdateNotes(ctx, id, notes)
}

func (s *SessionService) ListSessions(
	ctx context.Context,
	filter repository.SessionListFilter,
) ([]models.LiveSession, error) {
	return s.sessionRepo.List(ctx, filter)
}

func (s *SessionService) GetSession(ctx context.Context, id int64) (*models.LiveSession, error) {
	return s.sessionRepo.GetByID(ctx, id)
}
