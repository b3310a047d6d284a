package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
)

const (
	listAllergensSQL = `SELECT allergen_id, name, description
		FROM allergens ORDER BY name`

	insertAllergenSQL = `INSERT INTO allergens (name, description)
		VALUES ($1, $2) RETURNING allergen_id`

	updateAllergenSQL = `UPDATE allergens SET name = $2, description = $3
		WHERE allergen_id = $1`

	detachAllergenSQL = `DELETE FROM product_allergens WHERE allergen_id = $1`

	deleteAllergenSQL = `DELETE FROM allergens WHERE allergen_id = $1`
)

var _ catalog.AllergenRepository = (*AllergenRepository)(nil)

// AllergenRepository implements catalog.AllergenRepository backed by
// PostgreSQL.
type AllergenRepository struct {
	pool *pgxpool.Pool
}

// NewAllergenRepository returns an AllergenRepository that uses the given pool.
func NewAllergenRepository(pool *pgxpool.Pool) *AllergenRepository {
	return &AllergenRepository{pool: pool}
}

// List returns all allergens ordered by name.
func (r *AllergenRepository) List(ctx context.Context) ([]catalog.Allergen, error) {
	rows, err := r.pool.Query(ctx, listAllergensSQL)
	if err != nil {
		return nil, fmt.Errorf("listing allergens: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Allergen, error) {
		var a catalog.Allergen
		err := row.Scan(&a.AllergenID, &a.Name, &a.Description)
		return a, err
	})
}

// Create inserts an allergen and assigns its generated id.
func (r *AllergenRepository) Create(ctx context.Context, a *catalog.Allergen) error {
	err := r.pool.QueryRow(ctx, insertAllergenSQL, a.Name, a.Description).Scan(&a.AllergenID)
	if err != nil {
		return fmt.Errorf("creating allergen %q: %w", a.Name, err)
	}
	return nil
}

// Update rewrites the allergen's name and description.
func (r *AllergenRepository) Update(ctx context.Context, a *catalog.Allergen) error {
	tag, err := r.pool.Exec(ctx, updateAllergenSQL, a.AllergenID, a.Name, a.Description)
	if err != nil {
		return fmt.Errorf("updating allergen %d: %w", a.AllergenID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete detaches the allergen from every product, then removes it. Both
// steps run in one transaction.
func (r *AllergenRepository) Delete(ctx context.Context, allergenID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning allergen delete: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, detachAllergenSQL, allergenID); err != nil {
		return fmt.Errorf("detaching allergen %d: %w", allergenID, err)
	}

	tag, err := tx.Exec(ctx, deleteAllergenSQL, allergenID)
	if err != nil {
		return fmt.Errorf("deleting allergen %d: %w", allergenID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing allergen delete: %w", err)
	}
	return nil
}
