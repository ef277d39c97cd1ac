package models

import "time"

// Weekday is the day a class session recurs on.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// ValidWeekday reports whether the value names a day of the week.
func ValidWeekday(d Weekday) bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// ValidClockTime reports whether s is a zero-padded "HH:MM" wall-clock
// time. Zero padding keeps lexical order equal to chronological order.
func ValidClockTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// ClassSession is a recurring lecture slot. Start and end are same-day
// wall-clock times in "HH:MM" form; lexical order equals chronological order.
type ClassSession struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Module     string    `db:"module" json:"module"`
	Day        Weekday   `db:"day" json:"day"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	FacultyID  string    `db:"faculty_id" json:"faculty_id"`
	LocationID string    `db:"location_id" json:"location_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing class sessions.
type SessionFilter struct {
	CourseID   string
	FacultyID  string
	LocationID string
	Day        string
	Page       int
	PageSize   int
}
