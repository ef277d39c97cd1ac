package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campushub/timetable-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "course_id", "module", "day", "start_time", "end_time", "faculty_id", "location_id", "created_at", "updated_at"})
}

func TestSessionRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.ClassSession{
		CourseID:   "course-1",
		Module:     "Lecture 1",
		Day:        models.Monday,
		StartTime:  "09:00",
		EndTime:    "10:30",
		FacultyID:  "fac-1",
		LocationID: "room-1",
	}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NotEmpty(t, session.ID)

	rows := sessionRows().
		AddRow(session.ID, session.CourseID, session.Module, session.Day, session.StartTime, session.EndTime, session.FacultyID, session.LocationID, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions WHERE id = $1")).
		WithArgs(session.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.Monday, found.Day)
	require.Equal(t, "09:00", found.StartTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryFindByDayAndLocation(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sessionRows().
		AddRow("s-1", "course-1", "Lecture", "MONDAY", "09:00", "10:00", "fac-1", "room-1", time.Now(), time.Now()).
		AddRow("s-2", "course-2", "Lab", "MONDAY", "11:00", "12:00", "fac-2", "room-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE day = $1 AND location_id = $2 ORDER BY created_at ASC, id ASC")).
		WithArgs(models.Monday, "room-1").
		WillReturnRows(rows)

	sessions, err := repo.FindByDayAndLocation(context.Background(), models.Monday, "room-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "s-1", sessions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByCourseIDs(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sessionRows().
		AddRow("s-1", "course-1", "Lecture", "MONDAY", "09:00", "10:00", "fac-1", "room-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("course_id IN ($1, $2)")).
		WithArgs("course-1", "course-2").
		WillReturnRows(rows)

	sessions, err := repo.ListByCourseIDs(context.Background(), []string{"course-1", "course-2"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByCourseIDsEmpty(t *testing.T) {
	db, _, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	sessions, err := repo.ListByCourseIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestSessionRepositoryListFiltersUppercaseDay(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	rows := sessionRows().
		AddRow("s-1", "course-1", "Lecture", "FRIDAY", "14:00", "16:00", "fac-1", "room-2", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("day = $1")).
		WithArgs("FRIDAY").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("FRIDAY").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{Day: "friday"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
