package models

import "time"

// Enrollment links a student to a course. The pair is unique.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentWithCourse is an enrollment joined with its course row,
// used when listing a student's enrollments.
type EnrollmentWithCourse struct {
	Enrollment
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
	Credits    int    `db:"credits" json:"credits"`
}

// EnrollmentWithStudent is an enrollment joined with its student row,
// used when listing a course's roster.
type EnrollmentWithStudent struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}
