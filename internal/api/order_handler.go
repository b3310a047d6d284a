package api

import (
	"net/http"

	"github.com/lorandme/restaurant-api/internal/domain/auth"
	"github.com/lorandme/restaurant-api/internal/domain/order"
)

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "order must contain at least one item")
		return
	}
	if req.DeliveryAddress == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "deliveryAddress is required")
		return
	}

	cart, ok := s.buildCart(w, r, req.Items)
	if !ok {
		return
	}

	id, _ := auth.IdentityFrom(r.Context())
	orderID, err := s.orders.PlaceOrder(r.Context(), cart.Lines(), id.UserID, req.DeliveryAddress)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"orderId": orderID})
}

// buildCart resolves requested item IDs against the catalog so prices and
// names always come from the server, never from the client. ok is false
// after an error response has been written.
func (s *Server) buildCart(w http.ResponseWriter, r *http.Request, items []cartLineRequest) (*order.Cart, bool) {
	cart := &order.Cart{}
	for _, it := range items {
		if it.Quantity <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "item quantity must be positive")
			return nil, false
		}

		switch {
		case it.ProductID > 0 && it.MenuID == 0:
			p, err := s.catalog.Product(r.Context(), it.ProductID)
			if err != nil {
				writeDomainError(w, r, err)
				return nil, false
			}
			if !p.IsAvailable {
				writeError(w, http.StatusUnprocessableEntity, "item_unavailable", p.Name+" is not available")
				return nil, false
			}
			cart.Add(p.ProductID, p.Name, true, p.Price, it.Quantity)
		case it.MenuID > 0 && it.ProductID == 0:
			m, err := s.catalog.Menu(r.Context(), it.MenuID)
			if err != nil {
				writeDomainError(w, r, err)
				return nil, false
			}
			if !m.IsAvailable {
				writeError(w, http.StatusUnprocessableEntity, "item_unavailable", m.Name+" is not available")
				return nil, false
			}
			cart.Add(m.MenuID, m.Name, false, m.Price, it.Quantity)
		default:
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "each item needs exactly one of productId or menuId")
			return nil, false
		}
	}
	return cart, true
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	orders, err := s.orders.UserOrders(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.AllOrders(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (s *Server) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ActiveOrders(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", "status is required")
		return
	}

	if !s.orders.UpdateStatus(r.Context(), orderID, req.Status) {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
