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

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func strPtr(s string) *string { return &s }

func TestBookingRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	booking := &models.Booking{
		RoomID:      strPtr("room-1"),
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Description: "Guest lecture",
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	require.NotEmpty(t, booking.ID)

	rows := sqlmock.NewRows([]string{"id", "room_id", "resource_id", "start_time", "end_time", "description", "created_at", "updated_at"}).
		AddRow(booking.ID, "room-1", nil, booking.StartTime, booking.EndTime, booking.Description, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, room_id, resource_id, start_time, end_time")).
		WithArgs(booking.ID).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	require.Equal(t, booking.ID, found.ID)
	require.NotNil(t, found.RoomID)
	require.Equal(t, "room-1", *found.RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindByRoomOrdersByCreation(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	rows := sqlmock.NewRows([]string{"id", "room_id", "resource_id", "start_time", "end_time", "description", "created_at", "updated_at"}).
		AddRow("b-1", "room-1", nil, time.Now(), time.Now().Add(time.Hour), "", time.Now(), time.Now()).
		AddRow("b-2", "room-1", nil, time.Now(), time.Now().Add(time.Hour), "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE room_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("room-1").
		WillReturnRows(rows)

	bookings, err := repo.FindByRoom(context.Background(), "room-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	require.Equal(t, "b-1", bookings[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "room_id", "resource_id", "start_time", "end_time", "description", "created_at", "updated_at"}).
		AddRow("b-1", "room-1", nil, from.Add(9*time.Hour), from.Add(10*time.Hour), "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("room_id = $1 AND end_time > $2")).
		WithArgs("room-1", from).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("room-1", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{
		RoomID: "room-1",
		From:   &from,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), &models.Booking{
		ID:        "b-1",
		RoomID:    strPtr("room-2"),
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1")).
		WithArgs("b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "b-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
