// Package order implements order pricing and placement: subtotal, delivery
// fee, loyalty discount, and the persisted order with its line items.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle label stored on the order row. Transitions
// between statuses are not enforced; any value written through UpdateStatus
// is accepted as-is.
type Status = string

const (
	StatusRegistered Status = "Registered"
	StatusPreparing  Status = "Preparing"
	StatusOnDelivery Status = "OnDelivery"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// CartLine is one purchasable entry in a cart, either a product or a menu.
// The engine never mutates a cart line.
type CartLine struct {
	ItemID    int64
	IsProduct bool
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns UnitPrice multiplied by Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricingResult holds the computed amounts for a cart. FinalAmount is the
// exact identity Subtotal + DeliveryFee - Discount; it is not clamped at
// zero, matching the original pricing behaviour.
type PricingResult struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	FinalAmount decimal.Decimal
}

// Order is a persisted order header. OrderID is assigned by the repository
// on creation; Status is the only field mutated afterwards.
type Order struct {
	OrderID               int64
	UserID                int64
	OrderCode             string
	OrderDate             time.Time
	Status                Status
	DeliveryAddress       string
	TotalAmount           decimal.Decimal
	DeliveryFee           decimal.Decimal
	Discount              decimal.Decimal
	FinalAmount           decimal.Decimal
	EstimatedDeliveryTime time.Time
	Lines                 []Line
}

// Line is a persisted order line. Exactly one of ProductID or MenuID is set.
type Line struct {
	OrderID    int64
	ProductID  *int64
	MenuID     *int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Active reports whether the order is neither delivered nor cancelled.
// This is a read-side convention; nothing stops a delivered order from
// being moved back to an active status.
func (o *Order) Active() bool {
	return o.Status != StatusDelivered && o.Status != StatusCancelled
}

// HistoryQuery counts a customer's past orders for discount eligibility.
type HistoryQuery interface {
	CountOrdersSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// Repository defines persistence operations for orders.
//
// Create must persist the header and all lines as a single transaction:
// either the whole order exists afterwards or none of it does. It assigns
// OrderID on the passed order.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	SetStatus(ctx context.Context, orderID int64, status Status) error
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListActive(ctx context.Context) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}
