package models

import "time"

type SessionOffering struct {
	ID                 int64              `json:"id"`
	InstructorID       int64              `json:"instructor_id"`
	Title              string             `json:"title"`
	Description        *string            `json:"description"`
	TopicType          TopicType          `json:"topic_type"`
	SessionType        SessionType        `json:"session_type"`
	Format             SessionFormat      `json:"format"`
	DurationMinutes    int                `json:"duration_minutes"`
	Capacity           int                `json:"capacity"`
	BasePrice          float64            `json:"base_price"`
	Currency           string             `json:"currency"`
	IsActive           bool               `json:"is_active"`
	IsPublic           bool               `json:"is_public"`
	RequiresApproval   bool               `json:"requires_approval"`
	RecordingEnabled   bool               `json:"recording_enabled"`
	WhiteboardEnabled  bool               `json:"whiteboard_enabled"`
	ChatEnabled        bool               `json:"chat_enabled"`
	ScreenShareEnabled bool               `json:"screen_share_enabled"`
	CancellationPolicy CancellationPolicy `json:"cancellation_policy"`
	Tags               []string           `json:"tags"`
	Prerequisites      []string           `json:"prerequisites"`
	Materials          []string           `json:"materials"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// OfferingTotals are computed from bookings and sessions on read, never
// stored as counters that could drift.
type OfferingTotals struct {
	TotalBookings int     `json:"total_bookings"`
	TotalRevenue  float64 `json:"total_revenue"`
	AverageRating float64 `json:"average_rating"`
}

type OfferingDetail struct {
	SessionOffering
	Totals OfferingTotals `json:"totals"`
}
