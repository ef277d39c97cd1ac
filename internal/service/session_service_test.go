package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions map[string]models.ClassSession
	order    []string
	created  *models.ClassSession
	updated  *models.ClassSession
	deleted  []string
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error) {
	var list []models.ClassSession
	for _, id := range m.order {
		list = append(list, m.sessions[id])
	}
	return list, len(list), nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) FindByDayAndLocation(ctx context.Context, day models.Weekday, locationID string) ([]models.ClassSession, error) {
	var list []models.ClassSession
	for _, id := range m.order {
		s := m.sessions[id]
		if s.Day == day && s.LocationID == locationID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.ClassSession) error {
	if m.sessions == nil {
		m.sessions = make(map[string]models.ClassSession)
	}
	if session.ID == "" {
		session.ID = "new-session"
	}
	m.sessions[session.ID] = *session
	m.order = append(m.order, session.ID)
	m.created = session
	return nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.ClassSession) error {
	m.sessions[session.ID] = *session
	m.updated = session
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAssignmentRepo struct {
	pairs map[string]bool
}

func (m *mockAssignmentRepo) ExistsAssignment(ctx context.Context, userID, courseID string) (bool, error) {
	return m.pairs[userID+"|"+courseID], nil
}

type recordingNotifier struct {
	courses  []string
	messages []string
}

func (r *recordingNotifier) NotifyTimetableUpdate(ctx context.Context, courseID, message string) {
	r.courses = append(r.courses, courseID)
	r.messages = append(r.messages, message)
}

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) Invalidate(ctx context.Context) {
	r.calls++
}

type sessionFixture struct {
	repo        *mockSessionRepo
	notifier    *recordingNotifier
	invalidator *recordingInvalidator
	svc         *SessionService
}

func newSessionFixture(repo *mockSessionRepo) *sessionFixture {
	f := &sessionFixture{
		repo:        repo,
		notifier:    &recordingNotifier{},
		invalidator: &recordingInvalidator{},
	}
	f.svc = NewSessionService(repo,
		&mockExistsRepo{existing: map[string]bool{"course-1": true, "course-2": true}},
		&mockExistsRepo{existing: map[string]bool{"room-L": true}},
		&mockAssignmentRepo{pairs: map[string]bool{
			"fac-1|course-1": true,
			"fac-2|course-2": true,
		}},
		f.notifier, f.invalidator, nil, NewValidator(), zap.NewNop())
	return f
}

func mondaySession(id, courseID, start, end string) models.ClassSession {
	return models.ClassSession{
		ID:         id,
		CourseID:   courseID,
		Day:        models.Monday,
		StartTime:  start,
		EndTime:    end,
		FacultyID:  "fac-1",
		LocationID: "room-L",
	}
}

func seededSessionRepo(sessions ...models.ClassSession) *mockSessionRepo {
	repo := &mockSessionRepo{sessions: make(map[string]models.ClassSession)}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
		repo.order = append(repo.order, s.ID)
	}
	return repo
}

func TestSessionServiceCreateSuccess(t *testing.T) {
	f := newSessionFixture(seededSessionRepo())

	session, err := f.svc.Create(context.Background(), CreateSessionRequest{
		CourseID:   "course-1",
		Day:        "monday",
		StartTime:  "09:00",
		EndTime:    "11:00",
		FacultyID:  "fac-1",
		LocationID: "room-L",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Monday, session.Day)
	assert.Equal(t, 1, f.invalidator.calls)
	require.Len(t, f.notifier.courses, 1)
	assert.Equal(t, "course-1", f.notifier.courses[0])
}

func TestSessionServiceDifferentCourseConflict(t *testing.T) {
	f := newSessionFixture(seededSessionRepo(mondaySession("s-1", "course-1", "09:00", "11:00")))

	_, err := f.svc.Create(context.Background(), CreateSessionRequest{
		CourseID:   "course-2",
		Day:        "MONDAY",
		StartTime:  "10:00",
		EndTime:    "10:30",
		FacultyID:  "fac-2",
		LocationID: "room-L",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "A class session for the same day, location already exists during this time slot for a different course.", appErr.Message)

	var conflictErr *models.SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.ConflictKindOtherCourse, conflictErr.Kind)
	assert.Equal(t, "s-1", conflictErr.Conflict.RecordID)
}

func TestSessionServiceSameCourseConflict(t *testing.T) {
	f := newSessionFixture(seededSessionRepo(mondaySession("s-1", "course-1", "09:00", "11:00")))

	_, err := f.svc.Create(context.Background(), CreateSessionRequest{
		CourseID:   "course-1",
		Day:        "MONDAY",
		StartTime:  "10:00",
		EndTime:    "10:30",
		FacultyID:  "fac-1",
		LocationID: "room-L",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "A class session for the same day, location already exists during this time slot for this course.", appErr.Message)

	var conflictErr *models.SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.ConflictKindSameCourse, conflictErr.Kind)
}

func TestSessionServiceAdjacentSlotsAllowed(t *testing.T) {
	f := newSessionFixture(seededSessionRepo(mondaySession("s-1", "course-1", "09:00", "10:00")))

	_, err := f.svc.Create(context.Background(), CreateSessionRequest{
		CourseID:   "course-2",
		Day:        "MONDAY",
		StartTime:  "10:00",
		EndTime:    "11:00",
		FacultyID:  "fac-2",
		LocationID: "room-L",
	})
	require.NoError(t, err)
}

func TestSessionServiceUnassignedFacultyRejected(t *testing.T) {
	f := newSessionFixture(seededSessionRepo())

	_, err := f.svc.Create(context.Background(), CreateSessionRequest{
		CourseID:   "course-1",
		Day:        "MONDAY",
		StartTime:  "09:00",
		EndTime:    "10:00",
		FacultyID:  "fac-2", // assigned to course-2 only
		LocationID: "room-L",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErr.Code)
	assert.Nil(t, f.repo.created)
}

func TestSessionServiceInvalidTimeRejectedBeforeScan(t *testing.T) {
	f := newSessionFixture(seededSessionRepo())

	for _, tc := range []struct{ start, end string }{
		{"10:00", "10:00"},
		{"11:00", "10:00"},
	} {
		_, err := f.svc.Create(context.Background(), CreateSessionRequest{
			CourseID:   "course-1",
			Day:        "MONDAY",
			StartTime:  tc.start,
			EndTime:    tc.end,
			FacultyID:  "fac-1",
			LocationID: "room-L",
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Nil(t, f.repo.created)
}

func TestSessionServiceUpdateExcludesOwnID(t *testing.T) {
	f := newSessionFixture(seededSessionRepo(mondaySession("s-1", "course-1", "09:00", "11:00")))

	updated, err := f.svc.Update(context.Background(), "s-1", UpdateSessionRequest{
		CourseID:   "course-1",
		Day:        "MONDAY",
		StartTime:  "09:30",
		EndTime:    "11:30",
		FacultyID:  "fac-1",
		LocationID: "room-L",
	})
	require.NoError(t, err)
	assert.Equal(t, "s-1", updated.ID)
	assert.Equal(t, "09:30", updated.StartTime)
	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "timetable has been updated")
}

func TestSessionServiceDeleteNonexistentIs404(t *testing.T) {
	f := newSessionFixture(seededSessionRepo())

	err := f.svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.repo.deleted)
	assert.Zero(t, f.invalidator.calls)
}
