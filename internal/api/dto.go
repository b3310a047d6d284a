package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lorandme/restaurant-api/internal/domain/catalog"
	"github.com/lorandme/restaurant-api/internal/domain/order"
)

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	DeliveryAddress string `json:"deliveryAddress"`
	Password        string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	UserID          int64  `json:"userId"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	UserType        string `json:"userType"`
}

type productResponse struct {
	ProductID       int64           `json:"productId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	PortionQuantity decimal.Decimal `json:"portionQuantity"`
	PortionUnit     string          `json:"portionUnit"`
	TotalQuantity   decimal.Decimal `json:"totalQuantity"`
	CategoryID      int64           `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	IsAvailable     bool            `json:"isAvailable"`
	Allergens       []string        `json:"allergens"`
	Images          []string        `json:"images"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ProductID:       p.ProductID,
		Name:            p.Name,
		Price:           p.Price,
		PortionQuantity: p.PortionQuantity,
		PortionUnit:     p.PortionUnit,
		TotalQuantity:   p.TotalQuantity,
		CategoryID:      p.CategoryID,
		CategoryName:    p.CategoryName,
		IsAvailable:     p.IsAvailable,
		Allergens:       p.Allergens,
		Images:          p.Images,
	}
}

func toProductResponses(products []catalog.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}

type menuComponentResponse struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

type menuResponse struct {
	MenuID       int64                   `json:"menuId"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	CategoryID   int64                   `json:"categoryId"`
	CategoryName string                  `json:"categoryName"`
	IsAvailable  bool                    `json:"isAvailable"`
	Price        decimal.Decimal         `json:"price"`
	Components   []menuComponentResponse `json:"components"`
}

func toMenuResponses(menus []catalog.Menu) []menuResponse {
	out := make([]menuResponse, len(menus))
	for i, m := range menus {
		components := make([]menuComponentResponse, len(m.Components))
		for j, c := range m.Components {
			components[j] = menuComponentResponse{
				ProductID:    c.ProductID,
				ProductName:  c.ProductName,
				ProductPrice: c.ProductPrice,
				Quantity:     c.Quantity,
				Unit:         c.Unit,
			}
		}
		out[i] = menuResponse{
			MenuID:       m.MenuID,
			Name:         m.Name,
			Description:  m.Description,
			CategoryID:   m.CategoryID,
			CategoryName: m.CategoryName,
			IsAvailable:  m.IsAvailable,
			Price:        m.Price,
			Components:   components,
		}
	}
	return out
}

type cartLineRequest struct {
	ProductID int64 `json:"productId,omitempty"`
	MenuID    int64 `json:"menuId,omitempty"`
	Quantity  int   `json:"quantity"`
}

type placeOrderRequest struct {
	Items           []cartLineRequest `json:"items"`
	DeliveryAddress string            `json:"deliveryAddress"`
}

type orderLineResponse struct {
	ProductID  *int64          `json:"productId,omitempty"`
	MenuID     *int64          `json:"menuId,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type orderResponse struct {
	OrderID               int64               `json:"orderId"`
	OrderCode             string              `json:"orderCode"`
	OrderDate             time.Time           `json:"orderDate"`
	Status                string              `json:"status"`
	DeliveryAddress       string              `json:"deliveryAddress"`
	TotalAmount           decimal.Decimal     `json:"totalAmount"`
	DeliveryFee           decimal.Decimal     `json:"deliveryFee"`
	Discount              decimal.Decimal     `json:"discount"`
	FinalAmount           decimal.Decimal     `json:"finalAmount"`
	EstimatedDeliveryTime time.Time           `json:"estimatedDeliveryTime"`
	Lines                 []orderLineResponse `json:"lines"`
}

func toOrderResponse(o order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			ProductID:  l.ProductID,
			MenuID:     l.MenuID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
		}
	}
	return orderResponse{
		OrderID:               o.OrderID,
		OrderCode:             o.OrderCode,
		OrderDate:             o.OrderDate,
		Status:                o.Status,
		DeliveryAddress:       o.DeliveryAddress,
		TotalAmount:           o.TotalAmount,
		DeliveryFee:           o.DeliveryFee,
		Discount:              o.Discount,
		FinalAmount:           o.FinalAmount,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		Lines:                 lines,
	}
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResponse struct {
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type allergenRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type allergenResponse struct {
	AllergenID  int64  `json:"allergenId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type productRequest struct {
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	PortionQuantity decimal.Decimal `json:"portionQuantity"`
	PortionUnit     string          `json:"portionUnit"`
	TotalQuantity   decimal.Decimal `json:"totalQuantity"`
	CategoryID      int64           `json:"categoryId"`
	IsAvailable     bool            `json:"isAvailable"`
	AllergenIDs     []int64         `json:"allergenIds"`
	Images          []string        `json:"images"`
}

type menuComponentRequest struct {
	ProductID int64           `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

type menuRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	CategoryID  int64                  `json:"categoryId"`
	IsAvailable bool                   `json:"isAvailable"`
	Components  []menuComponentRequest `json:"components"`
}

type lowStockResponse struct {
	ProductID     int64           `json:"productId"`
	Name          string          `json:"name"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	PortionUnit   string          `json:"portionUnit"`
}
