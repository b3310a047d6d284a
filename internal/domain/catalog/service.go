package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lorandme/restaurant-api/internal/domain/settings"
)

var hundred = decimal.NewFromInt(100)

// Service wraps the catalog repositories with browsing, search, and the
// management rules staff rely on.
type Service struct {
	categories CategoryRepository
	products   ProductRepository
	allergens  AllergenRepository
	menus      MenuRepository
	cfg        settings.Store
}

// NewService creates a catalog Service with the required repositories.
func NewService(
	categories CategoryRepository,
	products ProductRepository,
	allergens AllergenRepository,
	menus MenuRepository,
	cfg settings.Store,
) *Service {
	return &Service{
		categories: categories,
		products:   products,
		allergens:  allergens,
		menus:      menus,
		cfg:        cfg,
	}
}

// Products returns all available products with category and allergen data.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.products.ListAvailable(ctx)
}

// AllProducts returns every product for the back office, including ones
// hidden from customers.
func (s *Service) AllProducts(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx)
}

// SearchByKeyword returns available products whose name contains the keyword,
// case-insensitively. An empty keyword yields an empty result, not the full
// catalog.
func (s *Service) SearchByKeyword(ctx context.Context, keyword string) ([]Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []Product{}, nil
	}

	all, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	matched := make([]Product, 0, len(all))
	for _, p := range all {
		if containsFold(p.Name, keyword) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// SearchByAllergen returns available products that contain the named
// allergen, or, when exclude is true, those free of it. An empty allergen
// yields an empty result.
func (s *Service) SearchByAllergen(ctx context.Context, allergen string, exclude bool) ([]Product, error) {
	allergen = strings.TrimSpace(allergen)
	if allergen == "" {
		return []Product{}, nil
	}

	all, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	matched := make([]Product, 0, len(all))
	for _, p := range all {
		if hasAllergen(p, allergen) != exclude {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func hasAllergen(p Product, allergen string) bool {
	for _, a := range p.Allergens {
		if containsFold(a, allergen) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Menus returns all available menus with their components and derived price.
func (s *Service) Menus(ctx context.Context) ([]Menu, error) {
	menus, err := s.menus.ListAvailable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list menus")
	}

	pct := settings.MenuDiscountPercentage(ctx, s.cfg)
	for i := range menus {
		menus[i].Price = menuPrice(menus[i].Components, pct)
	}
	return menus, nil
}

// AllMenus returns every menu for the back office, priced like Menus.
func (s *Service) AllMenus(ctx context.Context) ([]Menu, error) {
	menus, err := s.menus.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all menus")
	}

	pct := settings.MenuDiscountPercentage(ctx, s.cfg)
	for i := range menus {
		menus[i].Price = menuPrice(menus[i].Components, pct)
	}
	return menus, nil
}

// menuPrice sums the component product prices and reduces the total by the
// menu discount percentage, rounded to currency scale.
func menuPrice(components []MenuComponent, discountPct decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range components {
		sum = sum.Add(c.ProductPrice)
	}
	factor := hundred.Sub(discountPct).Div(hundred)
	return sum.Mul(factor).Round(2)
}

// LowStock returns products whose stock is below the configured threshold.
func (s *Service) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	threshold := settings.LowStockThreshold(ctx, s.cfg)
	return s.products.ListLowStock(ctx, threshold)
}

// --- category management ---

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) AddCategory(ctx context.Context, c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return s.categories.Create(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return s.categories.Update(ctx, c)
}

// DeleteCategory removes a category. Categories with products or menus
// attached cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.categories.Delete(ctx, categoryID)
}

// --- product management ---

func (s *Service) Product(ctx context.Context, productID int64) (*Product, error) {
	return s.products.GetByID(ctx, productID)
}

func (s *Service) AddProduct(ctx context.Context, p *Product, allergenIDs []int64, imagePaths []string) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return s.products.Create(ctx, p, allergenIDs, imagePaths)
}

func (s *Service) UpdateProduct(ctx context.Context, p *Product, allergenIDs []int64, imagePaths []string) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return s.products.Update(ctx, p, allergenIDs, imagePaths)
}

// DeleteProduct removes a product from the catalog. Products referenced by
// past orders are marked unavailable instead of being deleted, so order
// history stays intact.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	return s.products.Delete(ctx, productID)
}

// --- allergen management ---

func (s *Service) Allergens(ctx context.Context) ([]Allergen, error) {
	return s.allergens.List(ctx)
}

func (s *Service) AddAllergen(ctx context.Context, a *Allergen) error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameRequired
	}
	return s.allergens.Create(ctx, a)
}

func (s *Service) UpdateAllergen(ctx context.Context, a *Allergen) error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameRequired
	}
	return s.allergens.Update(ctx, a)
}

func (s *Service) DeleteAllergen(ctx context.Context, allergenID int64) error {
	return s.allergens.Delete(ctx, allergenID)
}

// --- menu management ---

func (s *Service) Menu(ctx context.Context, menuID int64) (*Menu, error) {
	m, err := s.menus.GetByID(ctx, menuID)
	if err != nil {
		return nil, err
	}
	m.Price = menuPrice(m.Components, settings.MenuDiscountPercentage(ctx, s.cfg))
	return m, nil
}

func (s *Service) AddMenu(ctx context.Context, m *Menu, components []MenuComponent) error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	return s.menus.Create(ctx, m, components)
}

func (s *Service) UpdateMenu(ctx context.Context, m *Menu, components []MenuComponent) error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	return s.menus.Update(ctx, m, components)
}

func (s *Service) DeleteMenu(ctx context.Context, menuID int64) error {
	return s.menus.Delete(ctx, menuID)
}
