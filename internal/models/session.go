package models

import "time"

// LiveSession is the confirmed, scheduled realization of an accepted
// booking request. It is created in the same transaction that accepts
// the request and only ever moves to completed or cancelled.
type LiveSession struct {
	ID               int64         `json:"id"`
	BookingID        int64         `json:"booking_id"`
	OfferingID       int64         `json:"offering_id"`
	InstructorID     int64         `json:"instructor_id"`
	StudentID        int64         `json:"student_id"`
	ScheduledStart   time.Time     `json:"scheduled_start"`
	ScheduledEnd     time.Time     `json:"scheduled_end"`
	Status           SessionStatus `json:"status"`
	InstructorPayout float64       `json:"instructor_payout"`
	PlatformFee      float64       `json:"platform_fee"`
	Currency         string        `json:"currency"`
	InstructorNotes  *string       `json:"instructor_notes"`
	PayoutID         *int64        `json:"payout_id"`
	Rating           *float64      `json:"rating"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type BookingDetail struct {
	BookingRequest
	Session *LiveSession `json:"session,omitempty"`
}
