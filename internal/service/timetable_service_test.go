package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type mockSessionLister struct {
	sessions map[string][]models.ClassSession // keyed by course id
	calls    int
}

func (m *mockSessionLister) ListByCourseIDs(ctx context.Context, courseIDs []string) ([]models.ClassSession, error) {
	m.calls++
	var list []models.ClassSession
	for _, id := range courseIDs {
		list = append(list, m.sessions[id]...)
	}
	return list, nil
}

type memoryCache struct {
	values map[string][]byte
	dels   []string
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.dels = append(m.dels, pattern)
	m.values = nil
	return nil
}

func timetableFixture() (*TimetableService, *mockSessionLister, *memoryCache) {
	enrollments := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e-1": {ID: "e-1", StudentID: "stu-1", CourseID: "course-1"},
	}}
	sessions := &mockSessionLister{sessions: map[string][]models.ClassSession{
		"course-1": {
			{ID: "s-1", CourseID: "course-1", Day: models.Monday, StartTime: "09:00", EndTime: "11:00", LocationID: "room-L"},
			{ID: "s-2", CourseID: "course-1", Day: models.Friday, StartTime: "14:00", EndTime: "15:00", LocationID: "room-M"},
		},
	}}
	cache := &memoryCache{}
	svc := NewTimetableService(enrollments, sessions, cache, time.Minute, nil, zap.NewNop())
	return svc, sessions, cache
}

func TestTimetableServiceAssemblesEnrolledSessions(t *testing.T) {
	svc, _, _ := timetableFixture()

	timetable, err := svc.ForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", timetable.StudentID)
	require.Len(t, timetable.Entries, 2)
	assert.Equal(t, models.Monday, timetable.Entries[0].Day)
	assert.Equal(t, "09:00", timetable.Entries[0].StartTime)
}

func TestTimetableServiceServesSecondReadFromCache(t *testing.T) {
	svc, sessions, _ := timetableFixture()

	_, err := svc.ForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	_, err = svc.ForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.calls)
}

func TestTimetableServiceInvalidateDropsCache(t *testing.T) {
	svc, sessions, cache := timetableFixture()

	_, err := svc.ForStudent(context.Background(), "stu-1")
	require.NoError(t, err)

	svc.Invalidate(context.Background())
	require.Contains(t, cache.dels, "timetable:*")

	_, err = svc.ForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.calls)
}

func TestTimetableServiceExportCSV(t *testing.T) {
	svc, _, _ := timetableFixture()

	data, err := svc.ExportCSV(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("Day,Start,End")))
	assert.Contains(t, string(data), "MONDAY,09:00,11:00")
}

func TestTimetableServiceExportPDF(t *testing.T) {
	svc, _, _ := timetableFixture()

	data, err := svc.ExportPDF(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestTimetableServiceEmptyForUnenrolledStudent(t *testing.T) {
	svc, _, _ := timetableFixture()

	timetable, err := svc.ForStudent(context.Background(), "stu-ghost")
	require.NoError(t, err)
	assert.Empty(t, timetable.Entries)
}
