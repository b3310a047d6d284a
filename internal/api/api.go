// Package api exposes the restaurant service over HTTP: customer-facing
// catalog browsing and ordering, plus employee back-office endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorandme/restaurant-api/internal/domain/auth"
	"github.com/lorandme/restaurant-api/internal/domain/catalog"
	"github.com/lorandme/restaurant-api/internal/domain/order"
	"github.com/lorandme/restaurant-api/pkg/health"
)

// Server bundles the domain services behind the HTTP handlers.
type Server struct {
	auth    *auth.Service
	catalog *catalog.Service
	orders  *order.Engine
	health  *health.Health
}

// NewServer wires the domain services into a Server.
func NewServer(authSvc *auth.Service, catalogSvc *catalog.Service, engine *order.Engine, h *health.Health) *Server {
	return &Server{
		auth:    authSvc,
		catalog: catalogSvc,
		orders:  engine,
		health:  h,
	}
}

// Router builds the route table. Authentication is attached globally so
// handlers can read the caller identity; authorization is enforced per
// route group.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(routeSpans, s.authenticate)

	r.Get("/livez", s.health.LiveEndpoint)
	r.Get("/readyz", s.health.ReadyEndpoint)

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Get("/products", s.handleListProducts)
	r.Get("/products/search", s.handleSearchProducts)
	r.Get("/menus", s.handleListMenus)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", s.handleMe)
		r.Post("/orders", s.handlePlaceOrder)
		r.Get("/orders/mine", s.handleMyOrders)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireEmployee)

		r.Get("/orders", s.handleAllOrders)
		r.Get("/orders/active", s.handleActiveOrders)
		r.Patch("/orders/{id}/status", s.handleUpdateOrderStatus)
		r.Get("/reports/low-stock", s.handleLowStockReport)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/categories", s.handleListCategories)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{id}", s.handleUpdateCategory)
			r.Delete("/categories/{id}", s.handleDeleteCategory)

			r.Get("/products", s.handleAdminListProducts)
			r.Post("/products", s.handleCreateProduct)
			r.Put("/products/{id}", s.handleUpdateProduct)
			r.Delete("/products/{id}", s.handleDeleteProduct)

			r.Get("/allergens", s.handleListAllergens)
			r.Post("/allergens", s.handleCreateAllergen)
			r.Put("/allergens/{id}", s.handleUpdateAllergen)
			r.Delete("/allergens/{id}", s.handleDeleteAllergen)

			r.Get("/menus", s.handleAdminListMenus)
			r.Post("/menus", s.handleCreateMenu)
			r.Put("/menus/{id}", s.handleUpdateMenu)
			r.Delete("/menus/{id}", s.handleDeleteMenu)
		})
	})

	return r
}
