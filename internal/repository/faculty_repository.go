package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

// FacultyRepository provides persistence for faculty-course assignments.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns every assignment ordered by creation time.
func (r *FacultyRepository) List(ctx context.Context) ([]models.FacultyAssignment, error) {
	const query = `SELECT id, user_id, course_id, created_at FROM faculty_assignments ORDER BY created_at ASC`
	var assignments []models.FacultyAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list faculty assignments: %w", err)
	}
	return assignments, nil
}

// ExistsAssignment reports whether the faculty user is assigned to the course.
func (r *FacultyRepository) ExistsAssignment(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM faculty_assignments WHERE user_id = $1 AND course_id = $2)`, userID, courseID); err != nil {
		return false, fmt.Errorf("faculty assignment exists: %w", err)
	}
	return exists, nil
}

// Create stores a new assignment.
func (r *FacultyRepository) Create(ctx context.Context, assignment *models.FacultyAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO faculty_assignments (id, user_id, course_id, created_at) VALUES (:id, :user_id, :course_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create faculty assignment: %w", err)
	}
	return nil
}
