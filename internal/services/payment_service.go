package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	gatewayAttempts = 3
	payoutLeadTime  = 48 * time.Hour
)

// Gateway is the external payment processor boundary. Calls are retried
// with the intent's idempotency key, so a duplicate attempt is safe.
type Gateway interface {
	RegisterIntent(ctx context.Context, idempotencyKey string, amount float64, currency string) error
}

// StubGateway stands in for a real processor; it accepts everything.
type StubGateway struct{}

func (StubGateway) RegisterIntent(context.Context, string, float64, string) error { return nil }

type PaymentService struct {
	db          *pgxpool.Pool
	paymentRepo *repository.PaymentRepository
	payoutRepo  *repository.PayoutRepository
	sessionRepo *repository.SessionRepository
	gateway     Gateway
	publisher   events.Publisher
	pusher      NotificationPusher
}

func NewPaymentService(
	db *pgxpool.Pool,
	paymentRepo *repository.PaymentRepository,
	payoutRepo *repository.PayoutRepository,
	sessionRepo *repository.SessionRepository,
	gateway Gateway,
	publisher events.Publisher,
	pusher NotificationPusher,
) *PaymentService {
	return &PaymentService{
		db:          db,
		paymentRepo: paymentRepo,
		payoutRepo:  payoutRepo,
		sessionRepo: sessionRepo,
		gateway:     gateway,
		publisher:   publisher,
		pusher:      pusher,
	}
}

// CreatePaymentIntent allocates (or resets) the booking's single intent
// and registers it with the gateway. The row is the source of truth: if
// the gateway never confirms, reconciliation reruns with the same key.
func (s *PaymentService) CreatePaymentIntent(
	ctx context.Context,
	bookingID int64,
	amount float64,
	currency string,
) (*models.PaymentIntent, error) {
	if bookingID <= 0 || amount <= 0 || len(currency) != 3 {
		return nil, ErrInvalidInput
	}

	intent, err := s.paymentRepo.Upsert(ctx, bookingID, uuid.NewString(), amount, currency)
	if err != nil {
		return nil, err
	}

	var gatewayErr error
	for attempt := 0; attempt < gatewayAttempts; attempt++ {
		gatewayErr = s.gateway.RegisterIntent(ctx, intent.IdempotencyKey, amount, currency)
		if gatewayErr == nil {
			break
		}
	}
	if gatewayErr != nil {
		return nil, ErrPaymentGateway
	}

	return intent, nil
}

var legalIntentTransitions = map[models.PaymentIntentStatus][]models.PaymentIntentStatus{
	models.PaymentIntentRequiresPaymentMethod: {
		models.PaymentIntentProcessing,
		models.PaymentIntentSucceeded,
		models.PaymentIntentFailed,
	},
	models.PaymentIntentProcessing: {
		models.PaymentIntentSucceeded,
		models.PaymentIntentFailed,
	},
	models.PaymentIntentSucceeded: {
		models.PaymentIntentRefunded,
	},
}

func intentTransitionLegal(current, next models.PaymentIntentStatus) bool {
	for _, allowed := range legalIntentTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// UpdatePaymentStatus applies a gateway status change. Success also marks
// the booking paid, in the same transaction.
func (s *PaymentService) UpdatePaymentStatus(
	ctx context.Context,
	id int64,
	next models.PaymentIntentStatus,
) (*models.PaymentIntent, error) {
	switch next {
	case models.PaymentIntentProcessing, models.PaymentIntentSucceeded,
		models.PaymentIntentFailed, models.PaymentIntentRefunded:
	default:
		return nil, ErrInvalidStatus
	}

	intent, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !intentTransitionLegal(intent.Status, next) {
		return nil, ErrInvalidStateTransition
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updated, err := repository.NewPaymentRepository(tx).UpdateStatusIfCurrent(ctx, id, intent.Status, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if next == models.PaymentIntentSucceeded {
		if _, err := repository.NewBookingRepository(tx).UpdatePaymentStatus(
			ctx, updated.BookingID, models.BookingPaymentPaid,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// ProcessRefund reverses a succeeded intent and the booking's payment
// state together, recording the reason on both sides.
func (s *PaymentService) ProcessRefund(
	ctx context.Context,
	bookingID int64,
	amount float64,
	reason string,
) (*models.PaymentIntent, error) {
	if bookingID <= 0 || amount <= 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)
	intent, err := txPaymentRepo.GetByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if amount > intent.Amount {
		return nil, ErrInvalidInput
	}

	refunded, err := txPaymentRepo.MarkRefunded(ctx, bookingID, reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if _, err := repository.NewBookingRepository(tx).UpdatePaymentStatus(
		ctx, bookingID, models.BookingPaymentRefunded,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return refunded, nil
}

// payoutTotals sums the instructor shares and platform fees over a
// payout's sessions. The payout amount is the share sum; the net is that
// amount minus the aggregated fee.
func payoutTotals(sessions []models.LiveSession) (amount, fee float64) {
	for _, session := range sessions {
		amount += session.InstructorPayout
		fee += session.PlatformFee
	}
	return amount, fee
}

// CreatePayout aggregates completed, not-yet-paid-out sessions into one
// scheduled payout. Sessions are locked and stamped with the payout id so
// a second payout over the same sessions fails instead of double-counting.
func (s *PaymentService) CreatePayout(
	ctx context.Context,
	instructorID int64,
	sessionIDs []int64,
) (*models.Payout, error) {
	if instructorID <= 0 || len(sessionIDs) == 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	sessions, err := txSessionRepo.ListForPayout(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	if len(sessions) != len(sessionIDs) {
		return nil, ErrInvalidInput
	}

	currency := ""
	for _, session := range sessions {
		if session.InstructorID != instructorID {
			return nil, ErrInvalidInput
		}
		if session.Status != models.SessionStatusCompleted {
			return nil, ErrInvalidInput
		}
		if session.PayoutID != nil {
			return nil, ErrConflict
		}
		if currency == "" {
			currency = session.Currency
		} else if currency != session.Currency {
			return nil, ErrInvalidInput
		}
	}
	amount, fee := payoutTotals(sessions)

	payout, err := repository.NewPayoutRepository(tx).Create(ctx, repository.CreatePayoutInput{
		InstructorID: instructorID,
		Amount:       amount,
		PlatformFee:  fee,
		NetAmount:    amount - fee,
		Currency:     currency,
		ScheduledFor: time.Now().UTC().Add(payoutLeadTime),
	})
	if err != nil {
		return nil, err
	}

	if err := txSessionRepo.SetPayoutID(ctx, sessionIDs, payout.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payout, nil
}

// UpdatePayoutStatus settles a pending payout. Only pending to paid is
// legal; paid_at is stamped by the same statement.
func (s *PaymentService) UpdatePayoutStatus(
	ctx context.Context,
	id int64,
	next models.PayoutStatus,
) (*models.Payout, error) {
	if next != models.PayoutStatusPaid {
		return nil, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	paid, err := repository.NewPayoutRepository(tx).MarkPaid(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	notif, err := repository.NewNotificationRepository(tx).Create(
		ctx, paid.InstructorID, models.NotificationPayoutPaid,
		"Payout sent",
		fmt.Sprintf("Payout of %.2f %s has been sent", paid.NetAmount, paid.Currency),
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.Push(notif.UserID, *notif)
	}
	s.publisher.Publish(ctx, events.TypePayoutPaid, events.BookingEvent{
		InstructorID: paid.InstructorID,
		Status:       string(paid.Status),
		OccurredAt:   time.Now().UTC(),
	})
	return paid, nil
}

func (s *PaymentService) GetPaymentIntent(ctx context.Context, bookingID int64) (*models.PaymentIntent, error) {
	return s.paymentRepo.GetByBookingID(ctx, bookingID)
}

func (s *PaymentService) ListPayouts(ctx context.Context, instructorID int64) ([]models.Payout, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.payoutRepo.ListByInstructor(ctx, instructorID)
}
