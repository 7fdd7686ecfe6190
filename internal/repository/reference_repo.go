package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/islandpros/directory_api/internal/models"
	"github.com/islandpros/directory_api/internal/utils"
)

// ReferenceRepository handles database operations for categories and areas.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListCategories returns all categories ordered by name
func (r *ReferenceRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name, slug FROM categories ORDER BY name, id`); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListAreas returns all areas, or only those on island when it is set
func (r *ReferenceRepository) ListAreas(ctx context.Context, island models.Island) ([]models.Area, error) {
	areas := []models.Area{}
	q := `SELECT id, name, island FROM areas`
	args := []interface{}{}
	if island != "" {
		q += ` WHERE island = $1`
		args = append(args, island)
	}
	q += ` ORDER BY island, name, id`

	if err := r.db.SelectContext(ctx, &areas, q, args...); err != nil {
		return nil, err
	}
	return areas, nil
}

// CreateCategory inserts a category and fills in its ID. A slug that is
// already taken returns utils.ErrDuplicateCategory.
func (r *ReferenceRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	const q = `INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowxContext(ctx, q, c.Name, c.Slug).Scan(&c.ID)
	if isUniqueViolation(err) {
		return utils.ErrDuplicateCategory
	}
	return err
}

// CreateArea inserts an area and fills in its ID. A name already used on
// the same island returns utils.ErrDuplicateArea.
func (r *ReferenceRepository) CreateArea(ctx context.Context, a *models.Area) error {
	const q = `INSERT INTO areas (name, island) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowxContext(ctx, q, a.Name, a.Island).Scan(&a.ID)
	if isUniqueViolation(err) {
		return utils.ErrDuplicateArea
	}
	return err
}
