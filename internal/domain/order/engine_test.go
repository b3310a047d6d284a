package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

// mockSettings serves values from a map and falls back to the provided
// default for unknown keys, mirroring the production store contract.
type mockSettings struct {
	values map[string]string
}

func (m *mockSettings) GetString(_ context.Context, key, def string) string {
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

func (m *mockSettings) GetInt(_ context.Context, key string, def int) int {
	if v, ok := m.values[key]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return def
		}
		return int(d.IntPart())
	}
	return def
}

func (m *mockSettings) GetDecimal(_ context.Context, key string, def decimal.Decimal) decimal.Decimal {
	if v, ok := m.values[key]; ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return def
		}
		return d
	}
	return def
}

type mockHistory struct {
	count     int
	lastSince time.Time
	err       error
}

func (m *mockHistory) CountOrdersSince(_ context.Context, _ int64, since time.Time) (int, error) {
	m.lastSince = since
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

type mockOrderRepo struct {
	lastOrder  *Order
	creates    int
	createErr  error
	statusErr  error
	lastStatus Status
	lastID     int64
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	o.OrderID = 42
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) SetStatus(_ context.Context, orderID int64, status Status) error {
	m.lastID = orderID
	m.lastStatus = status
	return m.statusErr
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ int64) ([]Order, error) { return nil, nil }
func (m *mockOrderRepo) ListActive(_ context.Context) ([]Order, error)          { return nil, nil }
func (m *mockOrderRepo) ListAll(_ context.Context) ([]Order, error)             { return nil, nil }

// --- Helpers ---

func newTestEngine(cfg map[string]string, history *mockHistory, repo *mockOrderRepo) *Engine {
	e := NewEngine(&mockSettings{values: cfg}, history, repo)
	e.now = func() time.Time {
		return time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC)
	}
	e.rand = func(lo, hi int) int { return lo }
	return e
}

func line(price string, qty int) CartLine {
	return CartLine{
		ItemID:    1,
		IsProduct: true,
		Name:      "item",
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got.String())
}

// --- Quote ---

func TestQuote_SubtotalWithDeliveryFee(t *testing.T) {
	// Cart 45.00 < threshold 75.00, customer has 2 prior orders (< 5).
	e := newTestEngine(nil, &mockHistory{count: 2}, &mockOrderRepo{})

	cart := []CartLine{line("20.00", 2), line("5.00", 1)}
	res, err := e.Quote(context.Background(), cart, 7)
	require.NoError(t, err)

	assertDecimalEqual(t, "45.00", res.Subtotal)
	assertDecimalEqual(t, "10.00", res.DeliveryFee)
	assertDecimalEqual(t, "0", res.Discount)
	assertDecimalEqual(t, "55.00", res.FinalAmount)
}

func TestQuote_FreeDeliveryAtLoweredThreshold(t *testing.T) {
	cfg := map[string]string{"MinOrderForFreeDelivery": "40.0"}
	e := newTestEngine(cfg, &mockHistory{count: 0}, &mockOrderRepo{})

	cart := []CartLine{line("20.00", 2), line("5.00", 1)}
	res, err := e.Quote(context.Background(), cart, 7)
	require.NoError(t, err)

	assertDecimalEqual(t, "45.00", res.Subtotal)
	assertDecimalEqual(t, "0", res.DeliveryFee)
	assertDecimalEqual(t, "45.00", res.FinalAmount)
}

func TestQuote_FreeDeliveryBoundaryIsInclusive(t *testing.T) {
	// Fee applies only strictly below the threshold: at exactly 75.00 the
	// delivery is free.
	e := newTestEngine(nil, &mockHistory{count: 0}, &mockOrderRepo{})

	res, err := e.Quote(context.Background(), []CartLine{line("75.00", 1)}, 7)
	require.NoError(t, err)
	assertDecimalEqual(t, "0", res.DeliveryFee)

	res, err = e.Quote(context.Background(), []CartLine{line("74.99", 1)}, 7)
	require.NoError(t, err)
	assertDecimalEqual(t, "10.00", res.DeliveryFee)
}

func TestQuote_LoyaltyDiscount(t *testing.T) {
	// Subtotal 100.00, 6 prior orders (>= 5), 10% discount, free delivery.
	e := newTestEngine(nil, &mockHistory{count: 6}, &mockOrderRepo{})

	res, err := e.Quote(context.Background(), []CartLine{line("100.00", 1)}, 7)
	require.NoError(t, err)

	assertDecimalEqual(t, "100.00", res.Subtotal)
	assertDecimalEqual(t, "0", res.DeliveryFee)
	assertDecimalEqual(t, "10.00", res.Discount)
	assertDecimalEqual(t, "90.00", res.FinalAmount)
}

func TestQuote_DiscountBoundaryCount(t *testing.T) {
	// Exactly the minimum order count is eligible; one fewer is not.
	for _, tc := range []struct {
		count    int
		discount string
	}{
		{count: 4, discount: "0"},
		{count: 5, discount: "10.00"},
	} {
		e := newTestEngine(nil, &mockHistory{count: tc.count}, &mockOrderRepo{})
		res, err := e.Quote(context.Background(), []CartLine{line("100.00", 1)}, 7)
		require.NoError(t, err)
		assertDecimalEqual(t, tc.discount, res.Discount)
	}
}

func TestQuote_EligibilityWindowUsesConfiguredPeriod(t *testing.T) {
	cfg := map[string]string{"OrdersPeriodForDiscount": "7"}
	h := &mockHistory{count: 0}
	e := newTestEngine(cfg, h, &mockOrderRepo{})

	_, err := e.Quote(context.Background(), []CartLine{line("10.00", 1)}, 7)
	require.NoError(t, err)

	want := time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, want, h.lastSince)
}

func TestQuote_LineOrderDoesNotAffectSubtotal(t *testing.T) {
	a := []CartLine{line("19.99", 3), line("7.50", 2), line("0.01", 5)}
	b := []CartLine{a[2], a[0], a[1]}

	e := newTestEngine(nil, &mockHistory{}, &mockOrderRepo{})
	ra, err := e.Quote(context.Background(), a, 7)
	require.NoError(t, err)
	rb, err := e.Quote(context.Background(), b, 7)
	require.NoError(t, err)

	assert.True(t, ra.Subtotal.Equal(rb.Subtotal))
	assertDecimalEqual(t, "75.02", ra.Subtotal)
}

func TestQuote_FinalAmountIdentity(t *testing.T) {
	e := newTestEngine(nil, &mockHistory{count: 9}, &mockOrderRepo{})

	carts := [][]CartLine{
		{line("0.01", 1)},
		{line("33.33", 3)},
		{line("74.99", 1), line("0.01", 1)},
		{line("123.45", 7), line("9.99", 2)},
	}
	for _, cart := range carts {
		res, err := e.Quote(context.Background(), cart, 7)
		require.NoError(t, err)
		want := res.Subtotal.Add(res.DeliveryFee).Sub(res.Discount)
		assert.True(t, want.Equal(res.FinalAmount))
	}
}

func TestQuote_EmptyCart(t *testing.T) {
	// An empty cart is not forbidden here; it yields subtotal zero plus the
	// delivery fee.
	e := newTestEngine(nil, &mockHistory{}, &mockOrderRepo{})

	res, err := e.Quote(context.Background(), nil, 7)
	require.NoError(t, err)
	assertDecimalEqual(t, "0", res.Subtotal)
	assertDecimalEqual(t, "10.00", res.DeliveryFee)
	assertDecimalEqual(t, "10.00", res.FinalAmount)
}

func TestQuote_HistoryFailurePropagates(t *testing.T) {
	h := &mockHistory{err: errors.New("history db down")}
	e := newTestEngine(nil, h, &mockOrderRepo{})

	_, err := e.Quote(context.Background(), []CartLine{line("10.00", 1)}, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discount eligibility")
}

func TestQuote_UnparsableConfigFallsBackToDefault(t *testing.T) {
	cfg := map[string]string{
		"DeliveryFee":          "not-a-number",
		"MinOrdersForDiscount": "also bad",
	}
	e := newTestEngine(cfg, &mockHistory{count: 5}, &mockOrderRepo{})

	res, err := e.Quote(context.Background(), []CartLine{line("10.00", 1)}, 7)
	require.NoError(t, err)
	assertDecimalEqual(t, "10.0", res.DeliveryFee)
	assertDecimalEqual(t, "1.000", res.Discount)
}

// --- PlaceOrder ---

func TestPlaceOrder_Unauthenticated(t *testing.T) {
	repo := &mockOrderRepo{}
	h := &mockHistory{}
	e := newTestEngine(nil, h, repo)

	_, err := e.PlaceOrder(context.Background(), []CartLine{line("10.00", 1)}, 0, "addr")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, repo.creates, "no persistence call may happen")
	assert.True(t, h.lastSince.IsZero(), "no history lookup may happen")
}

func TestPlaceOrder_PersistsPricedOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	e := newTestEngine(nil, &mockHistory{count: 6}, repo)

	menuLine := CartLine{
		ItemID:    9,
		IsProduct: false,
		Name:      "Family menu",
		UnitPrice: decimal.RequireFromString("60.00"),
		Quantity:  1,
	}
	cart := []CartLine{line("20.00", 2), menuLine}

	id, err := e.PlaceOrder(context.Background(), cart, 7, "12 Main St")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	o := repo.lastOrder
	require.NotNil(t, o)
	assert.Equal(t, int64(7), o.UserID)
	assert.Equal(t, StatusRegistered, o.Status)
	assert.Equal(t, "12 Main St", o.DeliveryAddress)
	assertDecimalEqual(t, "100.00", o.TotalAmount)
	assertDecimalEqual(t, "0", o.DeliveryFee)
	assertDecimalEqual(t, "10.00", o.Discount)
	assertDecimalEqual(t, "90.00", o.FinalAmount)
	assert.Equal(t, o.OrderDate.Add(30*time.Minute), o.EstimatedDeliveryTime)

	require.Len(t, o.Lines, 2)
	require.NotNil(t, o.Lines[0].ProductID)
	assert.Nil(t, o.Lines[0].MenuID)
	assert.Equal(t, int64(1), *o.Lines[0].ProductID)
	assertDecimalEqual(t, "40.00", o.Lines[0].TotalPrice)

	require.NotNil(t, o.Lines[1].MenuID)
	assert.Nil(t, o.Lines[1].ProductID)
	assert.Equal(t, int64(9), *o.Lines[1].MenuID)
	assertDecimalEqual(t, "60.00", o.Lines[1].TotalPrice)
}

func TestPlaceOrder_OrderCodeFormat(t *testing.T) {
	repo := &mockOrderRepo{}
	e := newTestEngine(nil, &mockHistory{}, repo)
	e.rand = func(lo, hi int) int {
		assert.Equal(t, 1000, lo)
		assert.Equal(t, 10000, hi)
		return 4815
	}

	_, err := e.PlaceOrder(context.Background(), []CartLine{line("10.00", 1)}, 7, "addr")
	require.NoError(t, err)

	assert.Equal(t, "ORD-250514-4815", repo.lastOrder.OrderCode)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{6}-\d{4}$`), repo.lastOrder.OrderCode)
}

func TestPlaceOrder_CreateFailure(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("insert failed")}
	e := newTestEngine(nil, &mockHistory{}, repo)

	_, err := e.PlaceOrder(context.Background(), []CartLine{line("10.00", 1)}, 7, "addr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

// --- UpdateStatus ---

func TestUpdateStatus_WritesThroughUnconditionally(t *testing.T) {
	repo := &mockOrderRepo{}
	e := newTestEngine(nil, &mockHistory{}, repo)

	// No transition graph: Delivered back to Registered succeeds.
	assert.True(t, e.UpdateStatus(context.Background(), 42, StatusDelivered))
	assert.True(t, e.UpdateStatus(context.Background(), 42, StatusRegistered))
	assert.Equal(t, StatusRegistered, repo.lastStatus)

	// Arbitrary strings pass through unvalidated.
	assert.True(t, e.UpdateStatus(context.Background(), 42, "Teleported"))
	assert.Equal(t, "Teleported", repo.lastStatus)
}

func TestUpdateStatus_FailureReturnsFalse(t *testing.T) {
	repo := &mockOrderRepo{statusErr: errors.New("no such order")}
	e := newTestEngine(nil, &mockHistory{}, repo)

	assert.False(t, e.UpdateStatus(context.Background(), 9999, StatusCancelled))
}
