package models

import "time"

// Booking reserves a room and/or a resource for an absolute time range.
// The range is half-open: [start_time, end_time).
type Booking struct {
	ID          string    `db:"id" json:"id"`
	RoomID      *string   `db:"room_id" json:"room_id,omitempty"`
	ResourceID  *string   `db:"resource_id" json:"resource_id,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	RoomID     string
	ResourceID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
