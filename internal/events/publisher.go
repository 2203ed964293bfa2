package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingAccepted  = "booking.accepted"
	TypeBookingRejected  = "booking.rejected"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingExpired   = "booking.expired"
	TypePayoutPaid       = "payout.paid"
)

// BookingEvent is the wire payload for booking lifecycle changes. Consumers
// key on BookingID, so all events for one booking land on one partition.
type BookingEvent struct {
	BookingID    int64     `json:"booking_id"`
	OfferingID   int64     `json:"offering_id"`
	StudentID    int64     `json:"student_id"`
	InstructorID int64     `json:"instructor_id,omitempty"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits engine events. Publishing is best-effort; the engine's
// state does not depend on delivery.
type Publisher interface {
	Publish(ctx context.Context, eventType string, event BookingEvent)
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher returns a nil-safe no-op publisher when no brokers are
// configured.
func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return noopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaPublisher{writer: writer, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, event BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal booking event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(uuid.NewString())},
			{Key: "event-type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("publish booking event",
			zap.String("type", eventType),
			zap.Int64("booking_id", event.BookingID),
			zap.Error(err),
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, BookingEvent) {}
func (noopPublisher) Close() error                                 { return nil }
