package models

import "time"

// Availability is an instructor's bookable window, either recurring on a
// weekday (DayOfWeek set) or pinned to a single date (SpecificDate set).
// Exactly one of the two is non-nil.
type Availability struct {
	ID                  int64      `json:"id"`
	InstructorID        int64      `json:"instructor_id"`
	DayOfWeek           *int       `json:"day_of_week"`
	SpecificDate        *time.Time `json:"specific_date"`
	StartTime           string     `json:"start_time"`
	EndTime             string     `json:"end_time"`
	IsActive            bool       `json:"is_active"`
	MaxSessionsPerSlot  int        `json:"max_sessions_per_slot"`
	SlotDurationMinutes int        `json:"slot_duration_minutes"`
	MinAdvanceHours     int        `json:"min_advance_hours"`
	BufferMinutes       int        `json:"buffer_minutes"`
	Timezone            string     `json:"timezone"`
	AutoAccept          bool       `json:"auto_accept"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TimeSlot is derived from an Availability window. Slots are regenerated
// whenever availability changes; they are never created by a user directly.
type TimeSlot struct {
	ID              int64     `json:"id"`
	AvailabilityID  int64     `json:"availability_id"`
	InstructorID    int64     `json:"instructor_id"`
	SlotDate        time.Time `json:"slot_date"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	DurationMinutes int       `json:"duration_minutes"`
	IsAvailable     bool      `json:"is_available"`
	IsBooked        bool      `json:"is_booked"`
	IsBlocked       bool      `json:"is_blocked"`
	MaxBookings     int       `json:"max_bookings"`
	CurrentBookings int       `json:"current_bookings"`
	Timezone        string    `json:"timezone"`
}
