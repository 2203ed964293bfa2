package models

import "time"

// PaymentIntent is the single authoritative payment record for a booking.
// A retry resets its status; it never gets a second identity.
type PaymentIntent struct {
	ID             int64               `json:"id"`
	BookingID      int64               `json:"booking_id"`
	IdempotencyKey string              `json:"idempotency_key"`
	Amount         float64             `json:"amount"`
	Currency       string              `json:"currency"`
	Status         PaymentIntentStatus `json:"status"`
	RefundReason   *string             `json:"refund_reason"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Payout aggregates the instructor's share of a set of completed sessions.
type Payout struct {
	ID           int64        `json:"id"`
	InstructorID int64        `json:"instructor_id"`
	Amount       float64      `json:"amount"`
	PlatformFee  float64      `json:"platform_fee"`
	NetAmount    float64      `json:"net_amount"`
	Currency     string       `json:"currency"`
	Status       PayoutStatus `json:"status"`
	ScheduledFor time.Time    `json:"scheduled_for"`
	PaidAt       *time.Time   `json:"paid_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
