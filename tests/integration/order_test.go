//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"strconv"
	"testing"
)

var orderCodePattern = regexp.MustCompile(`^ORD-\d{6}-\d{4}$`)

func TestPlaceOrder_NoAuth(t *testing.T) {
	resp := doPost(t, "/orders", placeOrderRequest{
		Items:           []orderItemRequest{{ProductID: 1, Quantity: 1}},
		DeliveryAddress: "Budapest",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	token := registerClient(t, "empty-order@resto.test")

	resp := doRequest(t, http.MethodPost, "/orders", token, placeOrderRequest{
		Items:           []orderItemRequest{},
		DeliveryAddress: "Budapest",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	token := registerClient(t, "ghost-product@resto.test")

	resp := doRequest(t, http.MethodPost, "/orders", token, placeOrderRequest{
		Items:           []orderItemRequest{{ProductID: 99999, Quantity: 1}},
		DeliveryAddress: "Budapest",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrderAndListMine(t *testing.T) {
	token := registerClient(t, "happy-order@resto.test")

	resp := doRequest(t, http.MethodPost, "/orders", token, placeOrderRequest{
		Items:           []orderItemRequest{{ProductID: 1, Quantity: 2}},
		DeliveryAddress: "Budapest, Kossuth tér 1.",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	listResp := doRequest(t, http.MethodGet, "/orders/mine", token, nil)
	defer listResp.Body.Close()

	orders := decodeJSON[[]orderResponse](t, listResp)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	o := orders[0]
	if !orderCodePattern.MatchString(o.OrderCode) {
		t.Errorf("order code %q does not match ORD-YYMMDD-NNNN", o.OrderCode)
	}
	if o.Status != "Registered" {
		t.Errorf("expected Registered status, got %q", o.Status)
	}
	// 2 x 9.50 Goulash Soup is under the free delivery threshold.
	if o.TotalAmount != "19" {
		t.Errorf("expected subtotal 19, got %q", o.TotalAmount)
	}
	if o.DeliveryFee != "10" {
		t.Errorf("expected delivery fee 10, got %q", o.DeliveryFee)
	}
	if o.FinalAmount != "29" {
		t.Errorf("expected final amount 29, got %q", o.FinalAmount)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	clientToken := registerClient(t, "status-client@resto.test")
	adminToken := loginAdmin(t)

	resp := doRequest(t, http.MethodPost, "/orders", clientToken, placeOrderRequest{
		Items:           []orderItemRequest{{ProductID: 2, Quantity: 1}},
		DeliveryAddress: "Budapest",
	})
	placed := decodeJSON[map[string]int64](t, resp)
	resp.Body.Close()
	orderID := placed["orderId"]

	// A client must not drive the kitchen workflow.
	forbidden := doRequest(t, http.MethodPatch, orderPath(orderID), clientToken, map[string]string{"status": "Preparing"})
	forbidden.Body.Close()
	if forbidden.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for client, got %d", forbidden.StatusCode)
	}

	update := doRequest(t, http.MethodPatch, orderPath(orderID), adminToken, map[string]string{"status": "Preparing"})
	update.Body.Close()
	if update.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", update.StatusCode)
	}

	listResp := doRequest(t, http.MethodGet, "/orders/mine", clientToken, nil)
	defer listResp.Body.Close()

	orders := decodeJSON[[]orderResponse](t, listResp)
	if len(orders) != 1 || orders[0].Status != "Preparing" {
		t.Fatalf("expected the order to be Preparing, got %+v", orders)
	}
}

func TestActiveOrders_EmployeeOnly(t *testing.T) {
	adminToken := loginAdmin(t)

	resp := doRequest(t, http.MethodGet, "/orders/active", adminToken, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderResponse](t, resp)
	for _, o := range orders {
		if o.Status == "Delivered" || o.Status == "Cancelled" {
			t.Errorf("closed order %q in active list", o.OrderCode)
		}
	}
}

func orderPath(id int64) string {
	return "/orders/" + strconv.FormatInt(id, 10) + "/status"
}
