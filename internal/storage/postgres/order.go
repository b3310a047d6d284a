package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorandme/restaurant-api/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, order_date, order_code, status,
		total_amount, delivery_fee, discount, final_amount,
		estimated_delivery_time, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_id`

	insertOrderLineSQL = `INSERT INTO order_details (order_id, product_id, menu_id,
		quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	setOrderStatusSQL = `UPDATE orders SET status = $2 WHERE order_id = $1`

	countOrdersSinceSQL = `SELECT COUNT(*) FROM orders
		WHERE user_id = $1 AND order_date >= $2`

	selectOrdersSQL = `SELECT order_id, user_id, order_date, order_code, status,
		total_amount, delivery_fee, discount, final_amount,
		estimated_delivery_time, delivery_address
		FROM orders`

	listOrdersByUserSQL = selectOrdersSQL + ` WHERE user_id = $1 ORDER BY order_date DESC`

	listActiveOrdersSQL = selectOrdersSQL +
		` WHERE status NOT IN ('Delivered', 'Cancelled') ORDER BY order_date DESC`

	listAllOrdersSQL = selectOrdersSQL + ` ORDER BY order_date DESC`

	listLinesForOrdersSQL = `SELECT order_id, product_id, menu_id, quantity,
		unit_price, total_price
		FROM order_details WHERE order_id = ANY($1) ORDER BY order_detail_id`
)

// ErrOrderNotFound is returned by SetStatus when no order row was updated.
var ErrOrderNotFound = errors.New("order not found")

var (
	_ order.Repository   = (*OrderRepository)(nil)
	_ order.HistoryQuery = (*OrderRepository)(nil)
)

// OrderRepository implements order.Repository and order.HistoryQuery backed
// by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all its lines in one transaction and
// assigns the generated order id. A failed line insert rolls back the
// header; a partially written order is never left behind.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.UserID, o.OrderDate, o.OrderCode, o.Status,
		o.TotalAmount, o.DeliveryFee, o.Discount, o.FinalAmount,
		o.EstimatedDeliveryTime, o.DeliveryAddress,
	).Scan(&o.OrderID)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.OrderCode, err)
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.OrderID
		_, err := tx.Exec(ctx, insertOrderLineSQL,
			o.OrderID, line.ProductID, line.MenuID,
			line.Quantity, line.UnitPrice, line.TotalPrice,
		)
		if err != nil {
			return fmt.Errorf("adding line %d to order %d: %w", i, o.OrderID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", o.OrderID, err)
	}
	return nil
}

// SetStatus overwrites the order's status. It returns ErrOrderNotFound when
// the order does not exist.
func (r *OrderRepository) SetStatus(ctx context.Context, orderID int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, setOrderStatusSQL, orderID, status)
	if err != nil {
		return fmt.Errorf("updating status of order %d: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// CountOrdersSince counts the user's orders placed at or after the given time.
func (r *OrderRepository) CountOrdersSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countOrdersSinceSQL, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orders for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByUser returns the user's orders with their lines, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	return r.list(ctx, listOrdersByUserSQL, userID)
}

// ListActive returns orders that are neither delivered nor cancelled.
func (r *OrderRepository) ListActive(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listActiveOrdersSQL)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listAllOrdersSQL)
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.OrderID, &o.UserID, &o.OrderDate, &o.OrderCode, &o.Status,
		&o.TotalAmount, &o.DeliveryFee, &o.Discount, &o.FinalAmount,
		&o.EstimatedDeliveryTime, &o.DeliveryAddress,
	)
	return o, err
}

// attachLines loads the order lines for every order in one query and
// distributes them onto the headers.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].OrderID
		byID[orders[i].OrderID] = &orders[i]
	}

	rows, err := r.pool.Query(ctx, listLinesForOrdersSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Line, error) {
		var l order.Line
		err := row.Scan(&l.OrderID, &l.ProductID, &l.MenuID,
			&l.Quantity, &l.UnitPrice, &l.TotalPrice)
		return l, err
	})
	if err != nil {
		return fmt.Errorf("scanning order lines: %w", err)
	}

	for _, l := range lines {
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return nil
}
