package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/timeslot"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindByRoom(ctx context.Context, roomID string) ([]models.Booking, error)
	FindByResource(ctx context.Context, resourceID string) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) error
}

type bookingRoomRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type bookingResourceRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CreateBookingRequest reserves a room and/or resource for a time range.
type CreateBookingRequest struct {
	RoomID      string    `json:"room_id"`
	ResourceID  string    `json:"resource_id"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Description string    `json:"description"`
}

// UpdateBookingRequest replaces a booking's slot and description.
type UpdateBookingRequest struct {
	RoomID      string    `json:"room_id"`
	ResourceID  string    `json:"resource_id"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Description string    `json:"description"`
}

// BookingService coordinates room and resource reservations with
// overlap detection on both axes.
type BookingService struct {
	repo      bookingRepository
	rooms     bookingRoomRepository
	resources bookingResourceRepository
	slots     *timeslot.KeyedMutex
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService instantiates BookingService. metrics may be nil.
func NewBookingService(repo bookingRepository, rooms bookingRoomRepository, resources bookingResourceRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:      repo,
		rooms:     rooms,
		resources: resources,
		slots:     timeslot.NewKeyedMutex(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns bookings with pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// Create inserts a new booking after overlap detection on the room and
// resource axes.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	booking, err := s.buildBooking(req.RoomID, req.ResourceID, req.StartTime, req.EndTime, req.Description, req)
	if err != nil {
		return nil, err
	}

	unlock := s.slots.LockAll(req.RoomID, req.ResourceID)
	defer unlock()

	if err := s.ensureNoConflict(ctx, booking, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	return booking, nil
}

// Update replaces a booking's slot, re-running overlap detection while
// ignoring the booking's own record.
func (s *BookingService) Update(ctx context.Context, id string, req UpdateBookingRequest) (*models.Booking, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildBooking(req.RoomID, req.ResourceID, req.StartTime, req.EndTime, req.Description, req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	unlock := s.slots.LockAll(req.RoomID, req.ResourceID)
	defer unlock()

	if err := s.ensureNoConflict(ctx, updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking")
	}
	return updated, nil
}

// Delete removes a booking by id.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	return nil
}

func (s *BookingService) buildBooking(roomID, resourceID string, start, end time.Time, description string, payload interface{}) (*models.Booking, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if roomID == "" && resourceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking requires a room or a resource")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	booking := &models.Booking{
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Description: description,
	}
	if roomID != "" {
		booking.RoomID = &roomID
	}
	if resourceID != "" {
		booking.ResourceID = &resourceID
	}
	return booking, nil
}

// ensureNoConflict scans both axes. Existing bookings are fetched
// earliest-created-first so the reported conflict is deterministic.
func (s *BookingService) ensureNoConflict(ctx context.Context, booking *models.Booking, ignoreID string) error {
	candidate := timeslot.Span[int64]{Start: booking.StartTime.Unix(), End: booking.EndTime.Unix()}

	if booking.RoomID != nil {
		exists, err := s.rooms.Exists(ctx, *booking.RoomID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room")
		}
		if !exists {
			return appErrors.Clone(appErrors.ErrReferenceNotFound, "room does not exist")
		}

		existing, err := s.repo.FindByRoom(ctx, *booking.RoomID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room bookings")
		}
		if hit, ok := timeslot.FirstOverlap(bookingEntries(existing), candidate, ignoreID); ok {
			return s.wrapConflict(models.ConflictAxisRoom, "Booking conflicts with existing room booking", hit)
		}
	}

	if booking.ResourceID != nil {
		exists, err := s.resources.Exists(ctx, *booking.ResourceID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resource")
		}
		if !exists {
			return appErrors.Clone(appErrors.ErrReferenceNotFound, "resource does not exist")
		}

		existing, err := s.repo.FindByResource(ctx, *booking.ResourceID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resource bookings")
		}
		if hit, ok := timeslot.FirstOverlap(bookingEntries(existing), candidate, ignoreID); ok {
			return s.wrapConflict(models.ConflictAxisResource, "Booking conflicts with existing resource booking", hit)
		}
	}

	return nil
}

func (s *BookingService) wrapConflict(axis, message string, hit timeslot.Entry[int64]) error {
	s.metrics.RecordConflict(axis)
	conflict := models.SlotConflict{
		RecordID: hit.ID,
		Axis:     axis,
		Kind:     models.ConflictKindBooking,
		Start:    time.Unix(hit.Span.Start, 0).UTC().Format(time.RFC3339),
		End:      time.Unix(hit.Span.End, 0).UTC().Format(time.RFC3339),
	}
	domainErr := &models.SlotConflictError{Kind: models.ConflictKindBooking, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

func bookingEntries(bookings []models.Booking) []timeslot.Entry[int64] {
	entries := make([]timeslot.Entry[int64], 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, timeslot.Entry[int64]{
			ID:   b.ID,
			Span: timeslot.Span[int64]{Start: b.StartTime.Unix(), End: b.EndTime.Unix()},
		})
	}
	return entries
}
