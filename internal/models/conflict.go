package models

// Conflict axes for slot collisions.
const (
	ConflictAxisRoom     = "ROOM"
	ConflictAxisResource = "RESOURCE"
	ConflictAxisLocation = "LOCATION"
)

// Conflict kinds refine the axis with why the write was blocked.
const (
	ConflictKindBooking     = "BOOKING"
	ConflictKindSameCourse  = "SAME_COURSE"
	ConflictKindOtherCourse = "OTHER_COURSE"
)

// SlotConflict describes the stored record that blocks a write.
type SlotConflict struct {
	RecordID string `json:"record_id"`
	Axis     string `json:"axis"`
	Kind     string `json:"kind"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// SlotConflictError is returned when a booking or class session collides
// with an existing record on the same slot.
type SlotConflictError struct {
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Conflict SlotConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *SlotConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
