package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/export"
)

type timetableEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentWithCourse, error)
	CourseIDsByStudent(ctx context.Context, studentID string) ([]string, error)
}

type timetableSessionRepository interface {
	ListByCourseIDs(ctx context.Context, courseIDs []string) ([]models.ClassSession, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TimetableService assembles per-student weekly timetables from
// enrollments and class sessions, with a Redis read cache in front.
type TimetableService struct {
	enrollments timetableEnrollmentRepository
	sessions    timetableSessionRepository
	cache       timetableCache
	cacheTTL    time.Duration
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewTimetableService instantiates TimetableService. cache and metrics
// may be nil.
func NewTimetableService(enrollments timetableEnrollmentRepository, sessions timetableSessionRepository, cache timetableCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &TimetableService{
		enrollments: enrollments,
		sessions:    sessions,
		cache:       cache,
		cacheTTL:    cacheTTL,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		metrics:     metrics,
		logger:      logger,
	}
}

// ForStudent returns the student's weekly timetable, served from cache
// when fresh.
func (s *TimetableService) ForStudent(ctx context.Context, studentID string) (*models.Timetable, error) {
	key := timetableCacheKey(studentID)
	if s.cache != nil {
		var cached models.Timetable
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	timetable, err := s.assemble(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, timetable, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}
	return timetable, nil
}

// ExportCSV renders the student's timetable as CSV bytes.
func (s *TimetableService) ExportCSV(ctx context.Context, studentID string) ([]byte, error) {
	timetable, err := s.ForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(timetableDataset(timetable))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
	}
	return data, nil
}

// ExportPDF renders the student's timetable as a PDF document.
func (s *TimetableService) ExportPDF(ctx context.Context, studentID string) ([]byte, error) {
	timetable, err := s.ForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(timetableDataset(timetable), "Weekly Timetable")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	return data, nil
}

// Invalidate drops every cached timetable. Called after class session
// writes since any student may be affected.
func (s *TimetableService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "timetable:*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}

func (s *TimetableService) assemble(ctx context.Context, studentID string) (*models.Timetable, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	courseNames := make(map[string]models.EnrollmentWithCourse, len(enrollments))
	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		courseNames[e.CourseID] = e
		courseIDs = append(courseIDs, e.CourseID)
	}

	sessions, err := s.sessions.ListByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}

	timetable := &models.Timetable{StudentID: studentID, Entries: make([]models.TimetableEntry, 0, len(sessions))}
	for _, cs := range sessions {
		course := courseNames[cs.CourseID]
		timetable.Entries = append(timetable.Entries, models.TimetableEntry{
			SessionID:  cs.ID,
			CourseID:   cs.CourseID,
			CourseName: course.CourseName,
			CourseCode: course.CourseCode,
			Module:     cs.Module,
			Day:        cs.Day,
			StartTime:  cs.StartTime,
			EndTime:    cs.EndTime,
			LocationID: cs.LocationID,
		})
	}
	return timetable, nil
}

func timetableCacheKey(studentID string) string {
	return fmt.Sprintf("timetable:%s", studentID)
}

func timetableDataset(timetable *models.Timetable) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Course", "Code", "Module", "Location"},
	}
	for _, entry := range timetable.Entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":      string(entry.Day),
			"Start":    entry.StartTime,
			"End":      entry.EndTime,
			"Course":   entry.CourseName,
			"Code":     entry.CourseCode,
			"Module":   entry.Module,
			"Location": entry.LocationID,
		})
	}
	return dataset
}
