package workers

import (
	"context"
	"time"

	"github.com/arman-y/TutorHubBack/internal/events"
	"github.com/arman-y/TutorHubBack/internal/models"
	"go.uber.org/zap"
)

type bookingExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) ([]models.BookingRequest, error)
}

type notificationWriter interface {
	Create(ctx context.Context, userID int64, nType models.NotificationType, title, body string) (*models.Notification, error)
}

// ExpirySweeper periodically flips stale pending booking requests to
// expired. Pending requests hold no slot capacity (capacity is claimed at
// acceptance), so the sweep only needs the status transition and fan-out.
type ExpirySweeper struct {
	bookings  bookingExpirer
	notifs    notificationWriter
	publisher events.Publisher
	interval  time.Duration
	log       *zap.Logger
}

func NewExpirySweeper(
	bookings bookingExpirer,
	notifs notificationWriter,
	publisher events.Publisher,
	interval time.Duration,
	log *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		bookings:  bookings,
		notifs:    notifs,
		publisher: publisher,
		interval:  interval,
		log:       log,
	}
}

// Run blocks until ctx is cancelled.
func (w *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) Sweep(ctx context.Context) {
	expired, err := w.bookings.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error("expire stale bookings", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	w.log.Info("expired stale booking requests", zap.Int("count", len(expired)))
	for _, booking := range expired {
		if _, err := w.notifs.Create(
			ctx, booking.StudentID, models.NotificationBookingExpired,
			"Booking request expired",
			"Your booking request was not answered in time",
		); err != nil {
			w.log.Warn("notify expired booking", zap.Int64("booking_id", booking.ID), zap.Error(err))
		}
		w.publisher.Publish(ctx, events.TypeBookingExpired, events.BookingEvent{
			BookingID:  booking.ID,
			OfferingID: booking.OfferingID,
			StudentID:  booking.StudentID,
			Status:     string(booking.Status),
			OccurredAt: time.Now().UTC(),
		})
	}
}
