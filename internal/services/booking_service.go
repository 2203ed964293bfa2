package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/models"
	"github.com/arman-y/TutorHubBack/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type offeringReader interface {
	GetByID(ctx context.Context, id int64) (*models.SessionOffering, error)
}

type BookingService struct {
	db           *pgxpool.Pool
	bookingRepo  *repository.BookingRepository
	sessionRepo  *repository.SessionRepository
	offeringRepo offeringReader
	publisher    events.Publisher
	pusher       NotificationPusher
	ttl          time.Duration
	feePercent   float64
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	sessionRepo *repository.SessionRepository,
	offeringRepo offeringReader,
	publisher events.Publisher,
	pusher NotificationPusher,
	ttl time.Duration,
	feePercent float64,
) *BookingService {
	return &BookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		sessionRepo:  sessionRepo,
		offeringRepo: offeringRepo,
		publisher:    publisher,
		pusher:       pusher,
		ttl:          ttl,
		feePercent:   feePercent,
	}
}

type CreateBookingInput struct {
	OfferingID         int64
	StudentID          int64
	PreferredStart     time.Time
	AlternativeStarts  []time.Time
	CustomTopic        *string
	CustomDescription  *string
	CustomRequirements *string
	Priority           models.BookingPriority
	OfferedPrice       float64
	StudentMessage     *string
}

// CreateBookingRequest records a student's ask against an offering. For
// offerings without approval the request is accepted in the same
// transaction (instant mode); otherwise it stays pending until the
// instructor acts or the TTL lapses.
func (s *BookingService) CreateBookingRequest(
	ctx context.Context,
	input CreateBookingInput,
) (*models.BookingDetail, error) {
	if input.OfferingID <= 0 || input.StudentID <= 0 || input.PreferredStart.IsZero() {
		return nil, ErrInvalidInput
	}
	if len(input.AlternativeStarts) > 2 {
		return nil, ErrInvalidInput
	}

	now := time.Now().UTC()
	if !input.PreferredStart.After(now) {
		return nil, ErrInvalidInput
	}

	offering, err := s.offeringRepo.GetByID(ctx, input.OfferingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}
	if !offering.IsActive {
		return nil, ErrInvalidInput
	}
	if offering.TopicType == models.TopicTypeFlexible &&
		(input.CustomTopic == nil || strings.TrimSpace(*input.CustomTopic) == "") {
		return nil, ErrInvalidInput
	}

	mode := models.BookingModeInstant
	if offering.RequiresApproval {
		mode = models.BookingModeRequest
	}
	price := offering.BasePrice
	if input.OfferedPrice > 0 {
		price = input.OfferedPrice
	}
	priority := input.Priority
	if priority == "" {
		priority = models.BookingPriorityNormal
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ok, err := repository.NewSlotRepository(tx).MeetsAdvanceNotice(
		ctx, offering.InstructorID, input.PreferredStart.UTC(), now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidInput
	}

	txBookingRepo := repository.NewBookingRepository(tx)
	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		OfferingID:         input.OfferingID,
		StudentID:          input.StudentID,
		BookingMode:        mode,
		PreferredStart:     input.PreferredStart.UTC(),
		AlternativeStarts:  input.AlternativeStarts,
		CustomTopic:        input.CustomTopic,
		CustomDescription:  input.CustomDescription,
		CustomRequirements: input.CustomRequirements,
		Priority:           priority,
		OfferedPrice:       price,
		Currency:           offering.Currency,
		ExpiresAt:          now.Add(s.ttl),
		StudentMessage:     input.StudentMessage,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	detail := &models.BookingDetail{BookingRequest: *booking}
	eventType := events.TypeBookingCreated

	var notif *models.Notification
	if mode == models.BookingModeInstant {
		accepted, session, studentNotif, err := s.acceptInTx(ctx, tx, booking, offering)
		if err != nil {
			return nil, err
		}
		detail = &models.BookingDetail{BookingRequest: *accepted, Session: session}
		eventType = events.TypeBookingAccepted
		notif = studentNotif
	} else {
		notif, err = repository.NewNotificationRepository(tx).Create(
			ctx,
			offering.InstructorID,
			models.NotificationBookingCreated,
			"New booking request",
			fmt.Sprintf("A student requested %q for %s", offering.Title,
				booking.PreferredStart.Format(time.RFC3339)),
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.pushNotif(notif)
	s.publish(ctx, eventType, detail.BookingRequest, offering.InstructorID)
	return detail, nil
}

// AcceptBookingRequest flips a pending request to accepted, claims slot
// capacity and materializes the LiveSession, all in one transaction.
// Accepts for the same instructor are serialized on an advisory lock so a
// capacity-1 slot admits exactly one of two racing accepts.
func (s *BookingService) AcceptBookingRequest(ctx context.Context, id int64) (*models.BookingDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	booking, err := txBookingRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	offering, err := repository.NewOfferingRepository(tx).GetByID(ctx, booking.OfferingID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", offering.InstructorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if booking.Expired(now) {
		if _, err := txBookingRepo.UpdateStatusIfCurrent(
			ctx, id, models.BookingStatusPending, models.BookingStatusExpired, nil,
		); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}
	if booking.Status != models.BookingStatusPending {
		return nil, ErrInvalidStateTransition
	}

	accepted, session, notif, err := s.acceptInTx(ctx, tx, booking, offering)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.pushNotif(notif)
	s.publish(ctx, events.TypeBookingAccepted, *accepted, offering.InstructorID)
	return &models.BookingDetail{BookingRequest: *accepted, Session: session}, nil
}

// acceptInTx performs the acceptance invariant inside the caller's
// transaction: claim the slot, insert the session, flip the status. The
// caller holds the instructor advisory lock (or just created the booking).
func (s *BookingService) acceptInTx(
	ctx context.Context,
	tx pgx.Tx,
	booking *models.BookingRequest,
	offering *models.SessionOffering,
) (*models.BookingRequest, *models.LiveSession, *models.Notification, error) {
	txSlotRepo := repository.NewSlotRepository(tx)
	if _, err := txSlotRepo.ClaimCapacity(ctx, offering.InstructorID, booking.PreferredStart); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, ErrConflict
		}
		return nil, nil, nil, err
	}

	fee := booking.OfferedPrice * s.feePercent / 100
	session, err := repository.NewSessionRepository(tx).Create(ctx, repository.CreateSessionInput{
		BookingID:        booking.ID,
		OfferingID:       offering.ID,
		InstructorID:     offering.InstructorID,
		StudentID:        booking.StudentID,
		ScheduledStart:   booking.PreferredStart,
		ScheduledEnd:     booking.PreferredStart.Add(time.Duration(offering.DurationMinutes) * time.Minute),
		InstructorPayout: booking.OfferedPrice - fee,
		PlatformFee:      fee,
		Currency:         booking.Currency,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	accepted, err := repository.NewBookingRepository(tx).UpdateStatusIfCurrent(
		ctx, booking.ID, models.BookingStatusPending, models.BookingStatusAccepted, nil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, ErrInvalidStateTransition
		}
		return nil, nil, nil, err
	}

	notif, err := repository.NewNotificationRepository(tx).Create(
		ctx,
		booking.StudentID,
		models.NotificationBookingAccepted,
		"Booking confirmed",
		fmt.Sprintf("Your session %q on %s is confirmed", offering.Title,
			session.ScheduledStart.Format(time.RFC3339)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	return accepted, session, notif, nil
}

// RejectBookingRequest is terminal; the reason is kept for downstream
// refund justification.
func (s *BookingService) RejectBookingRequest(
	ctx context.Context,
	id int64,
	reason string,
) (*models.BookingRequest, error) {
	return s.terminatePending(ctx, id, models.BookingStatusRejected, reason,
		models.NotificationBookingRejected, events.TypeBookingRejected)
}

func (s *BookingService) terminatePending(
	ctx context.Context,
	id int64,
	nextStatus models.BookingStatus,
	reason string,
	nType models.NotificationType,
	eventType string,
) (*models.BookingRequest, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Expired(time.Now().UTC()) {
		return nil, ErrExpired
	}

	var reasonPtr *string
	if strings.TrimSpace(reason) != "" {
		reasonPtr = &reason
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updated, err := repository.NewBookingRepository(tx).UpdateStatusIfCurrent(
		ctx, id, models.BookingStatusPending, nextStatus, reasonPtr,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	notif, err := repository.NewNotificationRepository(tx).Create(
		ctx, updated.StudentID, nType,
		fmt.Sprintf("Booking %s", nextStatus), reason,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.pushNotif(notif)
	s.publish(ctx, eventType, *updated, 0)
	return updated, nil
}

// CancelBookingRequest cancels a pending or accepted request. Cancelling
// an accepted one also cancels its scheduled session and releases the
// claimed slot capacity.
func (s *BookingService) CancelBookingRequest(
	ctx context.Context,
	id int64,
	reason string,
) (*models.BookingRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	booking, err := txBookingRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Expired(time.Now().UTC()) {
		return nil, ErrExpired
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusAccepted {
		return nil, ErrInvalidStateTransition
	}

	var reasonPtr *string
	if strings.TrimSpace(reason) != "" {
		reasonPtr = &reason
	}

	updated, err := txBookingRepo.UpdateStatusIfCurrent(
		ctx, id, booking.Status, models.BookingStatusCancelled, reasonPtr,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if booking.Status == models.BookingStatusAccepted {
		txSessionRepo := repository.NewSessionRepository(tx)
		session, err := txSessionRepo.GetByBookingID(ctx, id)
		if err != nil {
			return nil, err
		}
		if session.Status == models.SessionStatusScheduled {
			if _, err := txSessionRepo.UpdateStatusIfCurrent(
				ctx, session.ID, models.SessionStatusScheduled, models.SessionStatusCancelled,
			); err != nil {
				return nil, err
			}
			if _, err := repository.NewSlotRepository(tx).ReleaseCapacity(
				ctx, session.InstructorID, session.ScheduledStart,
			); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
		}
	}

	notif, err := repository.NewNotificationRepository(tx).Create(
		ctx, updated.StudentID, models.NotificationBookingCancelled,
		"Booking cancelled", reason,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.pushNotif(notif)
	s.publish(ctx, events.TypeBookingCancelled, *updated, 0)
	return updated, nil
}

// GetPendingRequests is a pure query; requests past their TTL never show
// up even before the sweep has marked them.
func (s *BookingService) GetPendingRequests(
	ctx context.Context,
	instructorID int64,
) ([]models.BookingRequest, error) {
	if instructorID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.bookingRepo.ListPendingForInstructor(ctx, instructorID)
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	filter repository.BookingListFilter,
) ([]models.BookingDetail, error) {
	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	bookingIDs := make([]int64, 0, len(bookings))
	for _, booking := range bookings {
		bookingIDs = append(bookingIDs, booking.ID)
	}
	sessionsByBooking, err := s.sessionRepo.ListByBookingIDs(ctx, bookingIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	details := make([]models.BookingDetail, 0, len(bookings))
	for _, booking := range bookings {
		booking.Status = booking.EffectiveStatus(now)
		detail := models.BookingDetail{BookingRequest: booking}
		if session, ok := sessionsByBooking[booking.ID]; ok {
			sessionCopy := session
			detail.Session = &sessionCopy
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Status = booking.EffectiveStatus(time.Now().UTC())

	detail := &models.BookingDetail{BookingRequest: *booking}
	session, err := s.sessionRepo.GetByBookingID(ctx, id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Session = session
	}
	return detail, nil
}

// pushNotif delivers a committed notification to live connections.
// Best effort only.
func (s *BookingService) pushNotif(notif *models.Notification) {
	if s.pusher != nil && notif != nil {
		s.pusher.Push(notif.UserID, *notif)
	}
}

func (s *BookingService) publish(
	ctx context.Context,
	eventType string,
	booking models.BookingRequest,
	instructorID int64,
) {
	s.publisher.Publish(ctx, eventType, events.BookingEvent{
		BookingID:    booking.ID,
		OfferingID:   booking.OfferingID,
		StudentID:    booking.StudentID,
		InstructorID: instructorID,
		Status:       string(booking.Status),
		OccurredAt:   time.Now().UTC(),
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
