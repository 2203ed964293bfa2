package models

import "time"

type BookingRequest struct {
	ID                 int64                `json:"id"`
	OfferingID         int64                `json:"offering_id"`
	StudentID          int64                `json:"student_id"`
	BookingMode        BookingMode          `json:"booking_mode"`
	PreferredStart     time.Time            `json:"preferred_start"`
	AlternativeStarts  []time.Time          `json:"alternative_starts"`
	CustomTopic        *string              `json:"custom_topic"`
	CustomDescription  *string              `json:"custom_description"`
	CustomRequirements *string              `json:"custom_requirements"`
	Status             BookingStatus        `json:"status"`
	Priority           BookingPriority      `json:"priority"`
	RescheduleCount    int                  `json:"reschedule_count"`
	OfferedPrice       float64              `json:"offered_price"`
	Currency           string               `json:"currency"`
	PaymentStatus      BookingPaymentStatus `json:"payment_status"`
	ExpiresAt          time.Time            `json:"expires_at"`
	StudentMessage     *string              `json:"student_message"`
	StatusReason       *string              `json:"status_reason"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// Expired reports whether a still-pending request has outlived its TTL.
func (b *BookingRequest) Expired(now time.Time) bool {
	return b.Status == BookingStatusPending && now.After(b.ExpiresAt)
}

// EffectiveStatus folds TTL expiry into the stored status so callers see
// expired requests as expired even before the sweep has run.
func (b *BookingRequest) EffectiveStatus(now time.Time) BookingStatus {
	if b.Expired(now) {
		return BookingStatusExpired
	}
	return b.Status
}
