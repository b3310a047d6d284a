package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
)

const (
	selectProductsSQL = `SELECT p.product_id, p.name, p.price, p.portion_quantity,
		p.portion_unit, p.total_quantity, p.category_id, c.name, p.is_available,
		COALESCE(array_agg(DISTINCT a.name ORDER BY a.name) FILTER (WHERE a.name IS NOT NULL), '{}'),
		COALESCE(array_agg(DISTINCT pi.image_path) FILTER (WHERE pi.image_path IS NOT NULL), '{}')
		FROM products p
		JOIN categories c ON c.category_id = p.category_id
		LEFT JOIN product_allergens pa ON pa.product_id = p.product_id
		LEFT JOIN allergens a ON a.allergen_id = pa.allergen_id
		LEFT JOIN product_images pi ON pi.product_id = p.product_id`

	listAvailableProductsSQL = selectProductsSQL + `
		WHERE p.is_available
		GROUP BY p.product_id, c.name
		ORDER BY p.product_id`

	listAllProductsSQL = selectProductsSQL + `
		GROUP BY p.product_id, c.name
		ORDER BY p.product_id`

	getProductByIDSQL = selectProductsSQL + `
		WHERE p.product_id = $1
		GROUP BY p.product_id, c.name`

	insertProductSQL = `INSERT INTO products (name, price, portion_quantity,
		portion_unit, total_quantity, category_id, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING product_id`

	updateProductSQL = `UPDATE products SET name = $2, price = $3,
		portion_quantity = $4, portion_unit = $5, total_quantity = $6,
		category_id = $7, is_available = $8
		WHERE product_id = $1`

	insertProductAllergenSQL = `INSERT INTO product_allergens (product_id, allergen_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	clearProductAllergensSQL = `DELETE FROM product_allergens WHERE product_id = $1`

	insertProductImageSQL = `INSERT INTO product_images (product_id, image_path)
		VALUES ($1, $2)`

	clearProductImagesSQL = `DELETE FROM product_images WHERE product_id = $1`

	productOrderedSQL = `SELECT EXISTS (
		SELECT 1 FROM order_details WHERE product_id = $1)`

	markProductUnavailableSQL = `UPDATE products SET is_available = FALSE
		WHERE product_id = $1`

	deleteProductSQL = `DELETE FROM products WHERE product_id = $1`

	listLowStockSQL = `SELECT product_id, name, total_quantity, portion_unit
		FROM products WHERE total_quantity < $1 ORDER BY total_quantity`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by
// PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListAvailable returns all available products with category name, allergen
// names, and image paths aggregated per row.
func (r *ProductRepository) ListAvailable(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listAvailableProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// List returns every product, unavailable ones included.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listAllProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product regardless of availability.
func (r *ProductRepository) GetByID(ctx context.Context, productID int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", productID, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", productID, err)
	}
	return &p, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ProductID, &p.Name, &p.Price, &p.PortionQuantity,
		&p.PortionUnit, &p.TotalQuantity, &p.CategoryID, &p.CategoryName,
		&p.IsAvailable, &p.Allergens, &p.Images,
	)
	return p, err
}

// Create inserts the product row, its allergen links, and its images in one
// transaction and assigns the generated id.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product, allergenIDs []int64, imagePaths []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning product create: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, insertProductSQL,
		p.Name, p.Price, p.PortionQuantity, p.PortionUnit,
		p.TotalQuantity, p.CategoryID, p.IsAvailable,
	).Scan(&p.ProductID)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}

	if err := insertLinks(ctx, tx, p.ProductID, allergenIDs, imagePaths); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing product create: %w", err)
	}
	return nil
}

// Update rewrites the product row and replaces its allergen and image sets
// in one transaction.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product, allergenIDs []int64, imagePaths []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning product update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, updateProductSQL,
		p.ProductID, p.Name, p.Price, p.PortionQuantity, p.PortionUnit,
		p.TotalQuantity, p.CategoryID, p.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", p.ProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	if _, err := tx.Exec(ctx, clearProductAllergensSQL, p.ProductID); err != nil {
		return fmt.Errorf("clearing allergens of product %d: %w", p.ProductID, err)
	}
	if _, err := tx.Exec(ctx, clearProductImagesSQL, p.ProductID); err != nil {
		return fmt.Errorf("clearing images of product %d: %w", p.ProductID, err)
	}
	if err := insertLinks(ctx, tx, p.ProductID, allergenIDs, imagePaths); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing product update: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx pgx.Tx, productID int64, allergenIDs []int64, imagePaths []string) error {
	for _, id := range allergenIDs {
		if _, err := tx.Exec(ctx, insertProductAllergenSQL, productID, id); err != nil {
			return fmt.Errorf("linking allergen %d to product %d: %w", id, productID, err)
		}
	}
	for _, path := range imagePaths {
		if _, err := tx.Exec(ctx, insertProductImageSQL, productID, path); err != nil {
			return fmt.Errorf("adding image to product %d: %w", productID, err)
		}
	}
	return nil
}

// Delete removes the product. Products referenced by order lines are marked
// unavailable instead so order history keeps resolving.
func (r *ProductRepository) Delete(ctx context.Context, productID int64) error {
	var ordered bool
	if err := r.pool.QueryRow(ctx, productOrderedSQL, productID).Scan(&ordered); err != nil {
		return fmt.Errorf("checking orders of product %d: %w", productID, err)
	}

	sql := deleteProductSQL
	if ordered {
		sql = markProductUnavailableSQL
	}

	tag, err := r.pool.Exec(ctx, sql, productID)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// ListLowStock returns products whose stock is below the threshold, lowest
// first.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]catalog.LowStockProduct, error) {
	rows, err := r.pool.Query(ctx, listLowStockSQL, threshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.LowStockProduct, error) {
		var p catalog.LowStockProduct
		err := row.Scan(&p.ProductID, &p.Name, &p.TotalQuantity, &p.PortionUnit)
		return p, err
	})
}
