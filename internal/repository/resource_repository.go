package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

// ResourceRepository provides persistence for bookable resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, name, description, is_available, created_at, updated_at`

// List returns all resources ordered by name.
func (r *ResourceRepository) List(ctx context.Context) ([]models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources ORDER BY name ASC`, resourceColumns)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// FindByID loads a resource by id.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources WHERE id = $1 LIMIT 1`, resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by id: %w", err)
	}
	return &resource, nil
}

// FindByName loads a resource by its unique name.
func (r *ResourceRepository) FindByName(ctx context.Context, name string) (*models.Resource, error) {
	query := fmt.Sprintf(`SELECT %s FROM resources WHERE name = $1 LIMIT 1`, resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find resource by name: %w", err)
	}
	return &resource, nil
}

// Exists reports whether a resource id is present.
func (r *ResourceRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM resources WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("resource exists: %w", err)
	}
	return exists, nil
}

// Create stores a new resource record.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	const query = `INSERT INTO resources (id, name, description, is_available, created_at, updated_at) VALUES (:id, :name, :description, :is_available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// UpdateAvailability flips the is_available flag.
func (r *ResourceRepository) UpdateAvailability(ctx context.Context, id string, isAvailable bool) error {
	const query = `UPDATE resources SET is_available = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, isAvailable, time.Now().UTC()); err != nil {
		return fmt.Errorf("update resource availability: %w", err)
	}
	return nil
}

// Delete removes a resource by id.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}
