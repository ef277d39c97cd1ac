package models

import "time"

// NotificationType distinguishes stored notification records.
type NotificationType string

const (
	NotificationAnnouncement    NotificationType = "ANNOUNCEMENT"
	NotificationTimetableUpdate NotificationType = "TIMETABLE_UPDATE"
)

// Notification is a persisted broadcast message.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
