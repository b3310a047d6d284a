// Package catalog holds the purchasable entities (categories, products,
// allergens, menus) and the staff-facing management rules around them.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors shared by the catalog repositories and service.
var (
	ErrNotFound     = errors.New("catalog entity not found")
	ErrNameRequired = errors.New("name is required")

	// ErrCategoryInUse blocks deletion of a category that still has
	// products or menus attached.
	ErrCategoryInUse = errors.New("category has related products or menus")
)

// Category groups products and menus.
type Category struct {
	CategoryID  int64
	Name        string
	Description string
}

// Allergen is a substance flagged on products.
type Allergen struct {
	AllergenID  int64
	Name        string
	Description string
}

// Product is a single purchasable dish.
type Product struct {
	ProductID       int64
	Name            string
	Price           decimal.Decimal
	PortionQuantity decimal.Decimal
	PortionUnit     string
	TotalQuantity   decimal.Decimal
	CategoryID      int64
	CategoryName    string
	IsAvailable     bool
	Allergens       []string
	Images          []string
}

// MenuComponent is one product inside a menu with its serving size.
type MenuComponent struct {
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     decimal.Decimal
	Unit         string
}

// Menu is a fixed combination of products sold together at a reduced price.
type Menu struct {
	MenuID       int64
	Name         string
	Description  string
	CategoryID   int64
	CategoryName string
	IsAvailable  bool
	Components   []MenuComponent

	// Price is derived from the component prices by the service; it is not
	// stored.
	Price decimal.Decimal
}

// LowStockProduct is a row on the low-stock report.
type LowStockProduct struct {
	ProductID     int64
	Name          string
	TotalQuantity decimal.Decimal
	PortionUnit   string
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	// Delete removes the category. It returns ErrCategoryInUse when products
	// or menus still reference it and ErrNotFound when it does not exist.
	Delete(ctx context.Context, categoryID int64) error
}

// ProductRepository persists products together with their allergen and
// image sets.
type ProductRepository interface {
	ListAvailable(ctx context.Context) ([]Product, error)
	// List returns every product, including unavailable ones, for the back
	// office.
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, productID int64) (*Product, error)
	// Create inserts the product, its allergen links, and its images in one
	// transaction.
	Create(ctx context.Context, p *Product, allergenIDs []int64, imagePaths []string) error
	// Update rewrites the product row and replaces its allergen and image sets.
	Update(ctx context.Context, p *Product, allergenIDs []int64, imagePaths []string) error
	// Delete removes the product, or marks it unavailable instead when order
	// lines reference it (orders are never broken by catalog changes).
	Delete(ctx context.Context, productID int64) error
	ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]LowStockProduct, error)
}

// AllergenRepository persists allergens.
type AllergenRepository interface {
	List(ctx context.Context) ([]Allergen, error)
	Create(ctx context.Context, a *Allergen) error
	Update(ctx context.Context, a *Allergen) error
	// Delete detaches the allergen from all products before removing it.
	Delete(ctx context.Context, allergenID int64) error
}

// MenuRepository persists menus and their component products.
type MenuRepository interface {
	ListAvailable(ctx context.Context) ([]Menu, error)
	List(ctx context.Context) ([]Menu, error)
	GetByID(ctx context.Context, menuID int64) (*Menu, error)
	Create(ctx context.Context, m *Menu, components []MenuComponent) error
	Update(ctx context.Context, m *Menu, components []MenuComponent) error
	// Delete removes the menu, or marks it unavailable when order lines
	// reference it.
	Delete(ctx context.Context, menuID int64) error
}
