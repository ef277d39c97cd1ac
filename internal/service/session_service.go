package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/timeslot"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	FindByDayAndLocation(ctx context.Context, day models.Weekday, locationID string) ([]models.ClassSession, error)
	Create(ctx context.Context, session *models.ClassSession) error
	Update(ctx context.Context, session *models.ClassSession) error
	Delete(ctx context.Context, id string) error
}

type sessionCourseRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type sessionLocationRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type sessionFacultyRepository interface {
	ExistsAssignment(ctx context.Context, userID, courseID string) (bool, error)
}

// sessionNotifier fans out timetable-change emails to enrolled students.
type sessionNotifier interface {
	NotifyTimetableUpdate(ctx context.Context, courseID, message string)
}

// timetableInvalidator drops cached timetables after a session write.
type timetableInvalidator interface {
	Invalidate(ctx context.Context)
}

// CreateSessionRequest describes the payload for a class session.
type CreateSessionRequest struct {
	CourseID   string `json:"course_id" validate:"required"`
	Module     string `json:"module"`
	Day        string `json:"day" validate:"required,weekday"`
	StartTime  string `json:"start_time" validate:"required,hhmm"`
	EndTime    string `json:"end_time" validate:"required,hhmm"`
	FacultyID  string `json:"faculty_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
}

// UpdateSessionRequest replaces a class session's slot and metadata.
type UpdateSessionRequest struct {
	CourseID   string `json:"course_id" validate:"required"`
	Module     string `json:"module"`
	Day        string `json:"day" validate:"required,weekday"`
	StartTime  string `json:"start_time" validate:"required,hhmm"`
	EndTime    string `json:"end_time" validate:"required,hhmm"`
	FacultyID  string `json:"faculty_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
}

// SessionService coordinates recurring class sessions with per-slot
// overlap detection.
type SessionService struct {
	repo        sessionRepository
	courses     sessionCourseRepository
	locations   sessionLocationRepository
	assignments sessionFacultyRepository
	notifier    sessionNotifier
	cache       timetableInvalidator
	slots       *timeslot.KeyedMutex
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSessionService instantiates SessionService. notifier, cache and
// metrics may be nil when their side effects are not wired.
func NewSessionService(repo sessionRepository, courses sessionCourseRepository, locations sessionLocationRepository, assignments sessionFacultyRepository, notifier sessionNotifier, cache timetableInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:        repo,
		courses:     courses,
		locations:   locations,
		assignments: assignments,
		notifier:    notifier,
		cache:       cache,
		slots:       timeslot.NewKeyedMutex(),
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// List returns class sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a class session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class session")
	}
	return session, nil
}

// Create inserts a new class session after reference checks and overlap
// detection on the (day, location) slot.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.ClassSession, error) {
	session, err := s.buildSession(req, req.CourseID, req.Day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	session.Module = req.Module
	session.FacultyID = req.FacultyID
	session.LocationID = req.LocationID

	if err := s.checkReferences(ctx, session); err != nil {
		return nil, err
	}

	unlock := s.slots.Lock(slotKey(session.Day, session.LocationID))
	defer unlock()

	if err := s.ensureNoConflict(ctx, session, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class session")
	}

	s.afterWrite(ctx, session, "A new class session has been scheduled for your course.")
	return session, nil
}

// Update replaces a class session, ignoring its own record in the scan.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*models.ClassSession, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildSession(req, req.CourseID, req.Day, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Module = req.Module
	updated.FacultyID = req.FacultyID
	updated.LocationID = req.LocationID

	if err := s.checkReferences(ctx, updated); err != nil {
		return nil, err
	}

	unlock := s.slots.Lock(slotKey(updated.Day, updated.LocationID))
	defer unlock()

	if err := s.ensureNoConflict(ctx, updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class session")
	}

	s.afterWrite(ctx, updated, "Your class timetable has been updated. Please review the new schedule.")
	return updated, nil
}

// Delete removes a class session by id.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class session")
	}
	s.afterWrite(ctx, session, "A class session for your course has been cancelled.")
	return nil
}

func (s *SessionService) buildSession(payload interface{}, courseID, day, start, end string) (*models.ClassSession, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class session payload")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}
	return &models.ClassSession{
		CourseID:  courseID,
		Day:       models.Weekday(strings.ToUpper(day)),
		StartTime: start,
		EndTime:   end,
	}, nil
}

func (s *SessionService) checkReferences(ctx context.Context, session *models.ClassSession) error {
	courseExists, err := s.courses.Exists(ctx, session.CourseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}
	if !courseExists {
		return appErrors.Clone(appErrors.ErrReferenceNotFound, "course does not exist")
	}

	assigned, err := s.assignments.ExistsAssignment(ctx, session.FacultyID, session.CourseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrReferenceNotFound, "faculty member is not assigned to this course")
	}

	locationExists, err := s.locations.Exists(ctx, session.LocationID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check location")
	}
	if !locationExists {
		return appErrors.Clone(appErrors.ErrReferenceNotFound, "location does not exist")
	}

	return nil
}

// ensureNoConflict scans every session sharing the (day, location) slot
// key, earliest-created-first. A collision with the candidate's own course
// is reported distinctly from one with a different course; both block the
// write.
func (s *SessionService) ensureNoConflict(ctx context.Context, session *models.ClassSession, ignoreID string) error {
	existing, err := s.repo.FindByDayAndLocation(ctx, session.Day, session.LocationID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class session conflicts")
	}

	candidate := timeslot.Span[string]{Start: session.StartTime, End: session.EndTime}
	hit, ok := timeslot.FirstOverlap(sessionEntries(existing), candidate, ignoreID)
	if !ok {
		return nil
	}

	kind := models.ConflictKindOtherCourse
	message := "A class session for the same day, location already exists during this time slot for a different course."
	for _, other := range existing {
		if other.ID == hit.ID && other.CourseID == session.CourseID {
			kind = models.ConflictKindSameCourse
			message = "A class session for the same day, location already exists during this time slot for this course."
			break
		}
	}

	s.metrics.RecordConflict(models.ConflictAxisLocation)
	conflict := models.SlotConflict{
		RecordID: hit.ID,
		Axis:     models.ConflictAxisLocation,
		Kind:     kind,
		Start:    hit.Span.Start,
		End:      hit.Span.End,
	}
	domainErr := &models.SlotConflictError{Kind: kind, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

// afterWrite fires the fan-out side effects. Both are best-effort.
func (s *SessionService) afterWrite(ctx context.Context, session *models.ClassSession, message string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.notifier != nil {
		s.notifier.NotifyTimetableUpdate(ctx, session.CourseID, message)
	}
}

func slotKey(day models.Weekday, locationID string) string {
	return fmt.Sprintf("%s|%s", day, locationID)
}

func sessionEntries(sessions []models.ClassSession) []timeslot.Entry[string] {
	entries := make([]timeslot.Entry[string], 0, len(sessions))
	for _, cs := range sessions {
		entries = append(entries, timeslot.Entry[string]{
			ID:   cs.ID,
			Span: timeslot.Span[string]{Start: cs.StartTime, End: cs.EndTime},
		})
	}
	return entries
}
