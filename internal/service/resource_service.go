package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type resourceRepository interface {
	List(ctx context.Context) ([]models.Resource, error)
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	FindByName(ctx context.Context, name string) (*models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
	UpdateAvailability(ctx context.Context, id string, isAvailable bool) error
	Delete(ctx context.Context, id string) error
}

// CreateResourceRequest describes the payload for adding a resource.
type CreateResourceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateResourceAvailabilityRequest toggles whether a resource can be booked.
type UpdateResourceAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

// ResourceService manages the bookable equipment inventory.
type ResourceService struct {
	repo      resourceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService instantiates ResourceService.
func NewResourceService(repo resourceRepository, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, validator: validate, logger: logger}
}

// List returns every resource.
func (s *ResourceService) List(ctx context.Context) ([]models.Resource, error) {
	resources, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, nil
}

// Get resolves a resource by id when the key parses as a UUID, otherwise by
// name.
func (s *ResourceService) Get(ctx context.Context, key string) (*models.Resource, error) {
	var (
		resource *models.Resource
		err      error
	)
	if _, parseErr := uuid.Parse(key); parseErr == nil {
		resource, err = s.repo.FindByID(ctx, key)
	} else {
		resource, err = s.repo.FindByName(ctx, key)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return resource, nil
}

// Create adds a new resource, available by default.
func (s *ResourceService) Create(ctx context.Context, req CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "resource name already in use")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resource name")
	}

	resource := models.Resource{Name: req.Name, Description: req.Description, IsAvailable: true}
	if err := s.repo.Create(ctx, &resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return &resource, nil
}

// UpdateAvailability flips a resource's availability flag by id or name.
func (s *ResourceService) UpdateAvailability(ctx context.Context, key string, req UpdateResourceAvailabilityRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	resource, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAvailability(ctx, resource.ID, *req.IsAvailable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource availability")
	}
	resource.IsAvailable = *req.IsAvailable
	return resource, nil
}

// Delete removes a resource by id or name.
func (s *ResourceService) Delete(ctx context.Context, key string) error {
	resource, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, resource.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	return nil
}
