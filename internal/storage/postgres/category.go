package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT category_id, name, description
		FROM categories ORDER BY name`

	insertCategorySQL = `INSERT INTO categories (name, description)
		VALUES ($1, $2) RETURNING category_id`

	updateCategorySQL = `UPDATE categories SET name = $2, description = $3
		WHERE category_id = $1`

	categoryInUseSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)
		OR EXISTS (SELECT 1 FROM menus WHERE category_id = $1)`

	deleteCategorySQL = `DELETE FROM categories WHERE category_id = $1`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by
// PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.CategoryID, &c.Name, &c.Description)
		return c, err
	})
}

// Create inserts a category and assigns its generated id.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	err := r.pool.QueryRow(ctx, insertCategorySQL, c.Name, c.Description).Scan(&c.CategoryID)
	if err != nil {
		return fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return nil
}

// Update rewrites the category's name and description.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.CategoryID, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("updating category %d: %w", c.CategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes the category. Categories still referenced by products or
// menus are rejected with catalog.ErrCategoryInUse.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID int64) error {
	var inUse bool
	if err := r.pool.QueryRow(ctx, categoryInUseSQL, categoryID).Scan(&inUse); err != nil {
		return fmt.Errorf("checking category %d references: %w", categoryID, err)
	}
	if inUse {
		return catalog.ErrCategoryInUse
	}

	tag, err := r.pool.Exec(ctx, deleteCategorySQL, categoryID)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
