package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context) ([]models.FacultyAssignment, error)
	ExistsAssignment(ctx context.Context, userID, courseID string) (bool, error)
	Create(ctx context.Context, assignment *models.FacultyAssignment) error
}

type facultyUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type facultyCourseRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AssignFacultyRequest links a faculty member to a course.
type AssignFacultyRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
}

// FacultyService manages which faculty members may teach which courses.
type FacultyService struct {
	repo      facultyRepository
	users     facultyUserRepository
	courses   facultyCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService instantiates FacultyService.
func NewFacultyService(repo facultyRepository, users facultyUserRepository, courses facultyCourseRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, users: users, courses: courses, validator: validate, logger: logger}
}

// List returns every faculty-course assignment.
func (s *FacultyService) List(ctx context.Context) ([]models.FacultyAssignment, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty assignments")
	}
	return assignments, nil
}

// Assign links a FACULTY user to an existing course. The pair is unique.
func (s *FacultyService) Assign(ctx context.Context, req AssignFacultyRequest) (*models.FacultyAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "user does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != models.RoleFaculty {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a faculty member")
	}

	exists, err := s.courses.Exists(ctx, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "course does not exist")
	}

	assigned, err := s.repo.ExistsAssignment(ctx, req.UserID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if assigned {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty already assigned to this course")
	}

	assignment := models.FacultyAssignment{UserID: req.UserID, CourseID: req.CourseID}
	if err := s.repo.Create(ctx, &assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return &assignment, nil
}
