package api

import (
	"net/http"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
)

// Back-office catalog management. All routes here sit behind the employee
// guard; validation beyond presence checks lives in the catalog service.

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{CategoryID: c.CategoryID, Name: c.Name, Description: c.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := catalog.Category{Name: req.Name, Description: req.Description}
	if err := s.catalog.AddCategory(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{CategoryID: c.CategoryID, Name: c.Name, Description: c.Description})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := catalog.Category{CategoryID: id, Name: req.Name, Description: req.Description}
	if err := s.catalog.UpdateCategory(r.Context(), &c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.AllProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := productFromRequest(0, req)
	if err := s.catalog.AddProduct(r.Context(), &p, req.AllergenIDs, req.Images); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := productFromRequest(id, req)
	if err := s.catalog.UpdateProduct(r.Context(), &p, req.AllergenIDs, req.Images); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productFromRequest(id int64, req productRequest) catalog.Product {
	return catalog.Product{
		ProductID:       id,
		Name:            req.Name,
		Price:           req.Price,
		PortionQuantity: req.PortionQuantity,
		PortionUnit:     req.PortionUnit,
		TotalQuantity:   req.TotalQuantity,
		CategoryID:      req.CategoryID,
		IsAvailable:     req.IsAvailable,
	}
}

func (s *Server) handleListAllergens(w http.ResponseWriter, r *http.Request) {
	allergens, err := s.catalog.Allergens(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]allergenResponse, len(allergens))
	for i, a := range allergens {
		out[i] = allergenResponse{AllergenID: a.AllergenID, Name: a.Name, Description: a.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAllergen(w http.ResponseWriter, r *http.Request) {
	var req allergenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a := catalog.Allergen{Name: req.Name, Description: req.Description}
	if err := s.catalog.AddAllergen(r.Context(), &a); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, allergenResponse{AllergenID: a.AllergenID, Name: a.Name, Description: a.Description})
}

func (s *Server) handleUpdateAllergen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req allergenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a := catalog.Allergen{AllergenID: id, Name: req.Name, Description: req.Description}
	if err := s.catalog.UpdateAllergen(r.Context(), &a); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAllergen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteAllergen(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.catalog.AllMenus(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponses(menus))
}

func (s *Server) handleCreateMenu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, components := menuFromRequest(0, req)
	if err := s.catalog.AddMenu(r.Context(), &m, components); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"menuId": m.MenuID})
}

func (s *Server) handleUpdateMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req menuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, components := menuFromRequest(id, req)
	if err := s.catalog.UpdateMenu(r.Context(), &m, components); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteMenu(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func menuFromRequest(id int64, req menuRequest) (catalog.Menu, []catalog.MenuComponent) {
	components := make([]catalog.MenuComponent, len(req.Components))
	for i, c := range req.Components {
		components[i] = catalog.MenuComponent{
			ProductID: c.ProductID,
			Quantity:  c.Quantity,
			Unit:      c.Unit,
		}
	}
	m := catalog.Menu{
		MenuID:      id,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsAvailable: req.IsAvailable,
	}
	return m, components
}
