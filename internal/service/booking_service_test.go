package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type mockBookingRepo struct {
	bookings map[string]models.Booking
	created  *models.Booking
	updated  *models.Booking
	deleted  []string
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	var list []models.Booking
	for _, b := range m.bookings {
		list = append(list, b)
	}
	return list, len(list), nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) FindByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	var list []models.Booking
	for _, id := range sortedBookingIDs(m.bookings) {
		b := m.bookings[id]
		if b.RoomID != nil && *b.RoomID == roomID {
			list = append(list, b)
		}
	}
	return list, nil
}

func (m *mockBookingRepo) FindByResource(ctx context.Context, resourceID string) ([]models.Booking, error) {
	var list []models.Booking
	for _, id := range sortedBookingIDs(m.bookings) {
		b := m.bookings[id]
		if b.ResourceID != nil && *b.ResourceID == resourceID {
			list = append(list, b)
		}
	}
	return list, nil
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if m.bookings == nil {
		m.bookings = make(map[string]models.Booking)
	}
	if booking.ID == "" {
		booking.ID = "new-booking"
	}
	m.bookings[booking.ID] = *booking
	m.created = booking
	return nil
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	m.bookings[booking.ID] = *booking
	m.updated = booking
	return nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	delete(m.bookings, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func sortedBookingIDs(bookings map[string]models.Booking) []string {
	ids := make([]string, 0, len(bookings))
	for id := range bookings {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if bookings[ids[j]].CreatedAt.Before(bookings[ids[i]].CreatedAt) {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids
}

type mockExistsRepo struct {
	existing map[string]bool
}

func (m *mockExistsRepo) Exists(ctx context.Context, id string) (bool, error) {
	return m.existing[id], nil
}

func newBookingService(repo *mockBookingRepo, rooms, resources map[string]bool) *BookingService {
	return NewBookingService(repo,
		&mockExistsRepo{existing: rooms},
		&mockExistsRepo{existing: resources},
		nil, NewValidator(), zap.NewNop())
}

func bookingAt(id, roomID string, start, end time.Time, createdAt time.Time) models.Booking {
	b := models.Booking{ID: id, StartTime: start, EndTime: end, CreatedAt: createdAt}
	if roomID != "" {
		b.RoomID = &roomID
	}
	return b
}

func TestBookingServiceCreateSuccess(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	booking, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID:    "room-1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "room-1", *booking.RoomID)
}

func TestBookingServiceCreateRoomOverlapRejected(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b-1": bookingAt("b-1", "room-1", start, start.Add(time.Hour), start),
	}}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID:    "room-1",
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Booking conflicts with existing room booking", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestBookingServiceCreateResourceOverlapRejected(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	resourceID := "res-1"
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b-1": {ID: "b-1", ResourceID: &resourceID, StartTime: start, EndTime: start.Add(time.Hour)},
	}}
	svc := newBookingService(repo, nil, map[string]bool{"res-1": true})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		ResourceID: "res-1",
		StartTime:  start.Add(30 * time.Minute),
		EndTime:    start.Add(2 * time.Hour),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "Booking conflicts with existing resource booking", appErr.Message)
}

func TestBookingServiceBackToBackAllowed(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b-1": bookingAt("b-1", "room-1", start, start.Add(time.Hour), start),
	}}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID:    "room-1",
		StartTime: start.Add(time.Hour),
		EndTime:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
}

func TestBookingServiceInvalidRangeRejectedBeforeScan(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, end := range []time.Time{start, start.Add(-time.Hour)} {
		_, err := svc.Create(context.Background(), CreateBookingRequest{
			RoomID:    "room-1",
			StartTime: start,
			EndTime:   end,
		})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Nil(t, repo.created)
}

func TestBookingServiceRequiresRoomOrResource(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, nil, nil)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceUnknownRoomRejected(t *testing.T) {
	svc := newBookingService(&mockBookingRepo{}, map[string]bool{}, nil)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID:    "ghost",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceUpdateExcludesOwnID(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b-1": bookingAt("b-1", "room-1", start, start.Add(time.Hour), start),
	}}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	// Shifting the booking within its own slot must not self-conflict.
	updated, err := svc.Update(context.Background(), "b-1", UpdateBookingRequest{
		RoomID:    "room-1",
		StartTime: start.Add(15 * time.Minute),
		EndTime:   start.Add(75 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "b-1", updated.ID)
	require.NotNil(t, repo.updated)
}

func TestBookingServiceConflictReportsEarliestCreated(t *testing.T) {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockBookingRepo{bookings: map[string]models.Booking{
		"b-new": bookingAt("b-new", "room-1", start, start.Add(time.Hour), start.Add(time.Minute)),
		"b-old": bookingAt("b-old", "room-1", start, start.Add(time.Hour), start),
	}}
	svc := newBookingService(repo, map[string]bool{"room-1": true}, nil)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID:    "room-1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	require.Error(t, err)

	var conflictErr *models.SlotConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "b-old", conflictErr.Conflict.RecordID)
	assert.Equal(t, models.ConflictAxisRoom, conflictErr.Conflict.Axis)
}

func TestBookingServiceDeleteNonexistentIs404(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newBookingService(repo, nil, nil)

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
