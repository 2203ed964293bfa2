package models

import "time"

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// SessionStats is a rolling aggregate recomputed from source rows on every
// read. It is never persisted.
type SessionStats struct {
	PendingRequests  int        `json:"pending_requests"`
	TotalEarnings    float64    `json:"total_earnings"`
	CompletedCount   int        `json:"completed_count"`
	CompletionRate   float64    `json:"completion_rate"`
	AverageBid       float64    `json:"average_bid"`
	PopularTimeSlots []HourSlot `json:"popular_time_slots"`
}

// HourSlot is an hour-of-day bucket label with its session count,
// e.g. {"9:00-10:00", 4}.
type HourSlot struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
