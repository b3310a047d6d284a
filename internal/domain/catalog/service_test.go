package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorandme/restaurant-api/internal/domain/settings"
)

// --- Mock implementations ---

type stubSettings struct {
	values map[string]string
}

func (s *stubSettings) GetString(_ context.Context, key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *stubSettings) GetInt(_ context.Context, _ string, def int) int { return def }

func (s *stubSettings) GetDecimal(_ context.Context, key string, def decimal.Decimal) decimal.Decimal {
	if v, ok := s.values[key]; ok {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return def
}

type mockProductRepo struct {
	available []Product
	lowStock  []LowStockProduct

	lastThreshold decimal.Decimal
	deletedID     int64
}

func (m *mockProductRepo) List(_ context.Context) ([]Product, error) {
	return m.available, nil
}

func (m *mockProductRepo) ListAvailable(_ context.Context) ([]Product, error) {
	return m.available, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	for i := range m.available {
		if m.available[i].ProductID == id {
			return &m.available[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockProductRepo) Create(_ context.Context, _ *Product, _ []int64, _ []string) error {
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, _ *Product, _ []int64, _ []string) error {
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	m.deletedID = id
	return nil
}

func (m *mockProductRepo) ListLowStock(_ context.Context, threshold decimal.Decimal) ([]LowStockProduct, error) {
	m.lastThreshold = threshold
	return m.lowStock, nil
}

type mockMenuRepo struct {
	menus []Menu
}

func (m *mockMenuRepo) ListAvailable(_ context.Context) ([]Menu, error) { return m.menus, nil }
func (m *mockMenuRepo) List(_ context.Context) ([]Menu, error)          { return m.menus, nil }

func (m *mockMenuRepo) GetByID(_ context.Context, id int64) (*Menu, error) {
	for i := range m.menus {
		if m.menus[i].MenuID == id {
			menu := m.menus[i]
			return &menu, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockMenuRepo) Create(_ context.Context, _ *Menu, _ []MenuComponent) error { return nil }
func (m *mockMenuRepo) Update(_ context.Context, _ *Menu, _ []MenuComponent) error { return nil }
func (m *mockMenuRepo) Delete(_ context.Context, _ int64) error                    { return nil }

type mockCategoryRepo struct {
	created *Category
	delErr  error
}

func (m *mockCategoryRepo) List(_ context.Context) ([]Category, error) { return nil, nil }
func (m *mockCategoryRepo) Create(_ context.Context, c *Category) error {
	m.created = c
	return nil
}
func (m *mockCategoryRepo) Update(_ context.Context, _ *Category) error { return nil }
func (m *mockCategoryRepo) Delete(_ context.Context, _ int64) error     { return m.delErr }

type mockAllergenRepo struct{}

func (mockAllergenRepo) List(_ context.Context) ([]Allergen, error)  { return nil, nil }
func (mockAllergenRepo) Create(_ context.Context, _ *Allergen) error { return nil }
func (mockAllergenRepo) Update(_ context.Context, _ *Allergen) error { return nil }
func (mockAllergenRepo) Delete(_ context.Context, _ int64) error     { return nil }

// --- Helpers ---

func testProduct(id int64, name string, allergens ...string) Product {
	return Product{
		ProductID:   id,
		Name:        name,
		Price:       decimal.RequireFromString("10.00"),
		IsAvailable: true,
		Allergens:   allergens,
	}
}

func newTestService(products *mockProductRepo, menus *mockMenuRepo, cfg map[string]string) *Service {
	return NewService(
		&mockCategoryRepo{},
		products,
		mockAllergenRepo{},
		menus,
		&stubSettings{values: cfg},
	)
}

// --- Search ---

func TestSearchByKeyword(t *testing.T) {
	repo := &mockProductRepo{available: []Product{
		testProduct(1, "Ciorbă de burtă"),
		testProduct(2, "Pizza Margherita"),
		testProduct(3, "Pizza Quattro Formaggi"),
	}}
	svc := newTestService(repo, &mockMenuRepo{}, nil)

	res, err := svc.SearchByKeyword(context.Background(), "pizza")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Pizza Margherita", res[0].Name)
}

func TestSearchByKeyword_EmptyKeywordReturnsNothing(t *testing.T) {
	repo := &mockProductRepo{available: []Product{testProduct(1, "Soup")}}
	svc := newTestService(repo, &mockMenuRepo{}, nil)

	res, err := svc.SearchByKeyword(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchByAllergen(t *testing.T) {
	repo := &mockProductRepo{available: []Product{
		testProduct(1, "Peanut stew", "Peanuts", "Celery"),
		testProduct(2, "Plain rice"),
		testProduct(3, "Noodles", "Gluten"),
	}}
	svc := newTestService(repo, &mockMenuRepo{}, nil)

	with, err := svc.SearchByAllergen(context.Background(), "peanuts", false)
	require.NoError(t, err)
	require.Len(t, with, 1)
	assert.Equal(t, int64(1), with[0].ProductID)

	without, err := svc.SearchByAllergen(context.Background(), "peanuts", true)
	require.NoError(t, err)
	require.Len(t, without, 2)

	empty, err := svc.SearchByAllergen(context.Background(), "", false)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// --- Menus ---

func TestMenus_PriceDerivedFromComponents(t *testing.T) {
	menus := &mockMenuRepo{menus: []Menu{{
		MenuID: 1,
		Name:   "Lunch",
		Components: []MenuComponent{
			{ProductID: 1, ProductPrice: decimal.RequireFromString("20.00")},
			{ProductID: 2, ProductPrice: decimal.RequireFromString("20.00")},
		},
	}}}
	svc := newTestService(&mockProductRepo{}, menus, nil)

	res, err := svc.Menus(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)

	// 40.00 reduced by the default 15% menu discount.
	assert.True(t, decimal.RequireFromString("34.00").Equal(res[0].Price),
		"got %s", res[0].Price)
}

func TestMenus_ConfiguredDiscount(t *testing.T) {
	menus := &mockMenuRepo{menus: []Menu{{
		MenuID: 1,
		Components: []MenuComponent{
			{ProductID: 1, ProductPrice: decimal.RequireFromString("50.00")},
		},
	}}}
	svc := newTestService(&mockProductRepo{}, menus, map[string]string{
		settings.KeyMenuDiscountPercentage: "20",
	})

	res, err := svc.Menus(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("40.00").Equal(res[0].Price))
}

// --- Low stock ---

func TestLowStock_UsesConfiguredThreshold(t *testing.T) {
	repo := &mockProductRepo{lowStock: []LowStockProduct{{ProductID: 3, Name: "Flour"}}}
	svc := newTestService(repo, &mockMenuRepo{}, map[string]string{
		settings.KeyLowStockThreshold: "12.5",
	})

	res, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(repo.lastThreshold))
}

// --- Management rules ---

func TestAddCategory_NameRequired(t *testing.T) {
	svc := newTestService(&mockProductRepo{}, &mockMenuRepo{}, nil)

	err := svc.AddCategory(context.Background(), &Category{Name: " "})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestDeleteCategory_InUse(t *testing.T) {
	cats := &mockCategoryRepo{delErr: ErrCategoryInUse}
	svc := NewService(cats, &mockProductRepo{}, mockAllergenRepo{}, &mockMenuRepo{}, &stubSettings{})

	err := svc.DeleteCategory(context.Background(), 1)
	require.ErrorIs(t, err, ErrCategoryInUse)
}

func TestProduct_NotFound(t *testing.T) {
	svc := newTestService(&mockProductRepo{}, &mockMenuRepo{}, nil)

	_, err := svc.Product(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}
