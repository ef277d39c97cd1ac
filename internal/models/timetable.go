package models

// TimetableEntry is one row of a student's weekly timetable.
type TimetableEntry struct {
	SessionID  string  `json:"session_id"`
	CourseID   string  `json:"course_id"`
	CourseName string  `json:"course_name"`
	CourseCode string  `json:"course_code"`
	Module     string  `json:"module"`
	Day        Weekday `json:"day"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	LocationID string  `json:"location_id"`
}

// Timetable is a student's full weekly schedule.
type Timetable struct {
	StudentID string           `json:"student_id"`
	Entries   []TimetableEntry `json:"entries"`
}
