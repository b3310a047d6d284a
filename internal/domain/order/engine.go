package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lorandme/restaurant-api/internal/domain/settings"
)

// Sentinel errors for order placement.
var (
	// ErrUnauthenticated is returned when PlaceOrder is invoked without an
	// authenticated customer. No persistence call is made in that case.
	ErrUnauthenticated = errors.New("customer must be authenticated to place an order")
)

// estimatedDeliveryOffset is added to the creation time to produce the
// estimated delivery time. Fixed, not configurable.
const estimatedDeliveryOffset = 30 * time.Minute

var hundred = decimal.NewFromInt(100)

// Engine turns a cart plus customer context into a priced, persisted order.
// It holds no mutable state; all collaborators are injected at construction.
type Engine struct {
	cfg     settings.Store
	history HistoryQuery
	orders  Repository

	now  func() time.Time
	rand func(lo, hi int) int
}

// NewEngine creates an Engine with the required collaborators.
func NewEngine(cfg settings.Store, history HistoryQuery, orders Repository) *Engine {
	return &Engine{
		cfg:     cfg,
		history: history,
		orders:  orders,
		now:     time.Now,
		rand: func(lo, hi int) int {
			return lo + rand.IntN(hi-lo)
		},
	}
}

// Quote computes the pricing for a cart without side effects.
//
// Subtotal is the exact decimal sum of unit price times quantity per line.
// The delivery fee applies only when the subtotal is strictly below the
// free-delivery threshold. The loyalty discount applies when the customer
// placed at least MinOrdersForDiscount orders within the trailing
// OrdersPeriodForDiscount days.
//
// Configuration lookups fall back to per-key defaults and never fail the
// quote; a history lookup failure does fail it.
func (e *Engine) Quote(ctx context.Context, cart []CartLine, userID int64) (PricingResult, error) {
	subtotal := decimal.Zero
	for _, line := range cart {
		subtotal = subtotal.Add(line.LineTotal())
	}

	deliveryFee := decimal.Zero
	if subtotal.LessThan(settings.MinOrderForFreeDelivery(ctx, e.cfg)) {
		deliveryFee = settings.DeliveryFee(ctx, e.cfg)
	}

	eligible, err := e.discountEligible(ctx, userID)
	if err != nil {
		return PricingResult{}, errors.Wrap(err, "check discount eligibility")
	}

	discount := decimal.Zero
	if eligible {
		pct := settings.OrderDiscountPercentage(ctx, e.cfg)
		discount = subtotal.Mul(pct).Div(hundred)
	}

	return PricingResult{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Discount:    discount,
		FinalAmount: subtotal.Add(deliveryFee).Sub(discount),
	}, nil
}

func (e *Engine) discountEligible(ctx context.Context, userID int64) (bool, error) {
	minOrders := settings.MinOrdersForDiscount(ctx, e.cfg)
	periodDays := settings.OrdersPeriodForDiscount(ctx, e.cfg)

	since := e.now().AddDate(0, 0, -periodDays)
	count, err := e.history.CountOrdersSince(ctx, userID, since)
	if err != nil {
		return false, err
	}
	return count >= minOrders, nil
}

// PlaceOrder prices the cart, then persists the order header and all line
// items as one unit. userID == 0 means no authenticated customer and fails
// with ErrUnauthenticated before any collaborator is touched.
func (e *Engine) PlaceOrder(ctx context.Context, cart []CartLine, userID int64, deliveryAddress string) (int64, error) {
	if userID == 0 {
		return 0, ErrUnauthenticated
	}

	pricing, err := e.Quote(ctx, cart, userID)
	if err != nil {
		return 0, errors.Wrap(err, "quote order")
	}

	now := e.now()
	o := &Order{
		UserID:                userID,
		OrderCode:             e.generateOrderCode(now),
		OrderDate:             now,
		Status:                StatusRegistered,
		DeliveryAddress:       deliveryAddress,
		TotalAmount:           pricing.Subtotal,
		DeliveryFee:           pricing.DeliveryFee,
		Discount:              pricing.Discount,
		FinalAmount:           pricing.FinalAmount,
		EstimatedDeliveryTime: now.Add(estimatedDeliveryOffset),
		Lines:                 make([]Line, len(cart)),
	}

	for i, line := range cart {
		id := line.ItemID
		l := Line{
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.LineTotal(),
		}
		if line.IsProduct {
			l.ProductID = &id
		} else {
			l.MenuID = &id
		}
		o.Lines[i] = l
	}

	if err := e.orders.Create(ctx, o); err != nil {
		return 0, errors.Wrap(err, "create order")
	}

	return o.OrderID, nil
}

// generateOrderCode builds a human-readable label of the form
// ORD-YYMMDD-NNNN with a random four-digit suffix. There is no uniqueness
// retry; the code is a display label, not the order identity.
func (e *Engine) generateOrderCode(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("060102"), e.rand(1000, 10000))
}

// UpdateStatus overwrites the order's status unconditionally. Any status
// string is written through; no transition graph is enforced. It reports
// success rather than returning an error: a missing order or a failed
// write both yield false.
func (e *Engine) UpdateStatus(ctx context.Context, orderID int64, status Status) bool {
	return e.orders.SetStatus(ctx, orderID, status) == nil
}

// UserOrders returns the customer's orders, newest first.
func (e *Engine) UserOrders(ctx context.Context, userID int64) ([]Order, error) {
	return e.orders.ListByUser(ctx, userID)
}

// ActiveOrders returns orders that are neither delivered nor cancelled.
func (e *Engine) ActiveOrders(ctx context.Context) ([]Order, error) {
	return e.orders.ListActive(ctx)
}

// AllOrders returns every order, newest first.
func (e *Engine) AllOrders(ctx context.Context) ([]Order, error) {
	return e.orders.ListAll(ctx)
}
