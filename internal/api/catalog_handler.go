package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

// handleSearchProducts serves both search modes: ?q= matches product names,
// ?allergen= matches the allergen list, optionally inverted with
// &exclude=true to find dishes safe for that allergy.
func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if allergen := query.Get("allergen"); allergen != "" || query.Has("allergen") {
		exclude, _ := strconv.ParseBool(query.Get("exclude"))
		products, err := s.catalog.SearchByAllergen(r.Context(), allergen, exclude)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProductResponses(products))
		return
	}

	products, err := s.catalog.SearchByKeyword(r.Context(), query.Get("q"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (s *Server) handleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.catalog.Menus(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponses(menus))
}

func (s *Server) handleLowStockReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.LowStock(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]lowStockResponse, len(rows))
	for i, p := range rows {
		out[i] = lowStockResponse{
			ProductID:     p.ProductID,
			Name:          p.Name,
			TotalQuantity: p.TotalQuantity,
			PortionUnit:   p.PortionUnit,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
