package models

import "time"

// FacultyAssignment links a faculty user to a course they may teach.
// The (user_id, course_id) pair is unique.
type FacultyAssignment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
