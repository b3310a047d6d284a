package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
)

const (
	selectMenusSQL = `SELECT m.menu_id, m.name, m.description, m.category_id,
		c.name, m.is_available
		FROM menus m
		JOIN categories c ON c.category_id = m.category_id`

	listAvailableMenusSQL = selectMenusSQL + ` WHERE m.is_available ORDER BY m.menu_id`

	listAllMenusSQL = selectMenusSQL + ` ORDER BY m.menu_id`

	getMenuByIDSQL = selectMenusSQL + ` WHERE m.menu_id = $1`

	listComponentsSQL = `SELECT mp.menu_id, mp.product_id, p.name, p.price,
		mp.product_quantity, mp.product_unit
		FROM menu_products mp
		JOIN products p ON p.product_id = mp.product_id
		WHERE mp.menu_id = ANY($1)
		ORDER BY mp.product_id`

	insertMenuSQL = `INSERT INTO menus (name, description, category_id, is_available)
		VALUES ($1, $2, $3, $4) RETURNING menu_id`

	updateMenuSQL = `UPDATE menus SET name = $2, description = $3,
		category_id = $4, is_available = $5
		WHERE menu_id = $1`

	insertMenuComponentSQL = `INSERT INTO menu_products (menu_id, product_id,
		product_quantity, product_unit)
		VALUES ($1, $2, $3, $4)`

	clearMenuComponentsSQL = `DELETE FROM menu_products WHERE menu_id = $1`

	menuOrderedSQL = `SELECT EXISTS (SELECT 1 FROM order_details WHERE menu_id = $1)`

	markMenuUnavailableSQL = `UPDATE menus SET is_available = FALSE WHERE menu_id = $1`

	deleteMenuSQL = `DELETE FROM menus WHERE menu_id = $1`
)

var _ catalog.MenuRepository = (*MenuRepository)(nil)

// MenuRepository implements catalog.MenuRepository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// ListAvailable returns all available menus with their components.
func (r *MenuRepository) ListAvailable(ctx context.Context) ([]catalog.Menu, error) {
	return r.list(ctx, listAvailableMenusSQL)
}

// List returns every menu, unavailable ones included.
func (r *MenuRepository) List(ctx context.Context) ([]catalog.Menu, error) {
	return r.list(ctx, listAllMenusSQL)
}

func (r *MenuRepository) list(ctx context.Context, sql string) ([]catalog.Menu, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("listing menus: %w", err)
	}

	menus, err := pgx.CollectRows(rows, scanMenu)
	if err != nil {
		return nil, fmt.Errorf("scanning menus: %w", err)
	}
	if len(menus) == 0 {
		return menus, nil
	}

	if err := r.attachComponents(ctx, menus); err != nil {
		return nil, err
	}
	return menus, nil
}

// GetByID returns a single menu with its components.
func (r *MenuRepository) GetByID(ctx context.Context, menuID int64) (*catalog.Menu, error) {
	rows, err := r.pool.Query(ctx, getMenuByIDSQL, menuID)
	if err != nil {
		return nil, fmt.Errorf("getting menu %d: %w", menuID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, scanMenu)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu %d: %w", menuID, err)
	}

	menus := []catalog.Menu{m}
	if err := r.attachComponents(ctx, menus); err != nil {
		return nil, err
	}
	return &menus[0], nil
}

func scanMenu(row pgx.CollectableRow) (catalog.Menu, error) {
	var m catalog.Menu
	err := row.Scan(&m.MenuID, &m.Name, &m.Description,
		&m.CategoryID, &m.CategoryName, &m.IsAvailable)
	return m, err
}

func (r *MenuRepository) attachComponents(ctx context.Context, menus []catalog.Menu) error {
	ids := make([]int64, len(menus))
	byID := make(map[int64]*catalog.Menu, len(menus))
	for i := range menus {
		ids[i] = menus[i].MenuID
		byID[menus[i].MenuID] = &menus[i]
	}

	rows, err := r.pool.Query(ctx, listComponentsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing menu components: %w", err)
	}

	type componentRow struct {
		menuID int64
		c      catalog.MenuComponent
	}
	components, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (componentRow, error) {
		var cr componentRow
		err := row.Scan(&cr.menuID, &cr.c.ProductID, &cr.c.ProductName,
			&cr.c.ProductPrice, &cr.c.Quantity, &cr.c.Unit)
		return cr, err
	})
	if err != nil {
		return fmt.Errorf("scanning menu components: %w", err)
	}

	for _, cr := range components {
		if m, ok := byID[cr.menuID]; ok {
			m.Components = append(m.Components, cr.c)
		}
	}
	return nil
}

// Create inserts the menu and its component links in one transaction and
// assigns the generated id.
func (r *MenuRepository) Create(ctx context.Context, m *catalog.Menu, components []catalog.MenuComponent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning menu create: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx, insertMenuSQL,
		m.Name, m.Description, m.CategoryID, m.IsAvailable,
	).Scan(&m.MenuID)
	if err != nil {
		return fmt.Errorf("creating menu %q: %w", m.Name, err)
	}

	if err := insertComponents(ctx, tx, m.MenuID, components); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing menu create: %w", err)
	}
	return nil
}

// Update rewrites the menu row and replaces its component set in one
// transaction.
func (r *MenuRepository) Update(ctx context.Context, m *catalog.Menu, components []catalog.MenuComponent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning menu update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, updateMenuSQL,
		m.MenuID, m.Name, m.Description, m.CategoryID, m.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("updating menu %d: %w", m.MenuID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}

	if _, err := tx.Exec(ctx, clearMenuComponentsSQL, m.MenuID); err != nil {
		return fmt.Errorf("clearing components of menu %d: %w", m.MenuID, err)
	}
	if err := insertComponents(ctx, tx, m.MenuID, components); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing menu update: %w", err)
	}
	return nil
}

func insertComponents(ctx context.Context, tx pgx.Tx, menuID int64, components []catalog.MenuComponent) error {
	for _, c := range components {
		_, err := tx.Exec(ctx, insertMenuComponentSQL, menuID, c.ProductID, c.Quantity, c.Unit)
		if err != nil {
			return fmt.Errorf("linking product %d to menu %d: %w", c.ProductID, menuID, err)
		}
	}
	return nil
}

// Delete removes the menu, or marks it unavailable when order lines still
// reference it.
func (r *MenuRepository) Delete(ctx context.Context, menuID int64) error {
	var ordered bool
	if err := r.pool.QueryRow(ctx, menuOrderedSQL, menuID).Scan(&ordered); err != nil {
		return fmt.Errorf("checking orders of menu %d: %w", menuID, err)
	}

	sql := deleteMenuSQL
	if ordered {
		sql = markMenuUnavailableSQL
	}

	tag, err := r.pool.Exec(ctx, sql, menuID)
	if err != nil {
		return fmt.Errorf("deleting menu %d: %w", menuID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
