//go:build integration

package integration

import (
	"net/http"
	"strconv"
	"testing"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func placeOrder(t *testing.T, req orderRequest) orderResponse {
	t.Helper()
	resp := doPost(t, "/api/orders", req)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)

	if loc := resp.Header.Get("Location"); loc == "" {
		t.Error("Location header not present")
	}
	return decodeJSON[envelope[orderResponse]](t, resp).Data
}

func TestPlaceOrder(t *testing.T) {
	joao := customerByEmail(t, "joao@email.com")
	bella := restaurantByName(t, "Pizzaria Bella")
	margherita := productByName(t, bella.ID, "Pizza Margherita")
	calabresa := productByName(t, bella.ID, "Pizza Calabresa")

	o := placeOrder(t, orderRequest{
		CustomerID:      joao.ID,
		RestaurantID:    bella.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Items: []orderItemRequest{
			{ProductID: margherita.ID, Quantity: 2},
			{ProductID: calabresa.ID, Quantity: 1},
		},
	})

	if o.Status != "PENDING" {
		t.Errorf("status: got %q, want PENDING", o.Status)
	}
	if o.Subtotal != 108 || o.DeliveryFee != 5 || o.Total != 113 {
		t.Errorf("totals: got subtotal=%v fee=%v total=%v", o.Subtotal, o.DeliveryFee, o.Total)
	}
	if len(o.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(o.Items))
	}

	resp := doGet(t, "/api/orders/"+itoa(o.ID))
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	got := decodeJSON[envelope[orderResponse]](t, resp).Data
	if got.Total != 113 {
		t.Errorf("stored total: got %v, want 113", got.Total)
	}
}

func TestPlaceOrder_Rejected(t *testing.T) {
	joao := customerByEmail(t, "joao@email.com")
	pedro := customerByEmail(t, "pedro@email.com")
	bella := restaurantByName(t, "Pizzaria Bella")
	king := restaurantByName(t, "Burger King")
	margherita := productByName(t, bella.ID, "Pizza Margherita")
	fries := productByName(t, king.ID, "Batata Frita")

	tests := []struct {
		name string
		req  orderRequest
		want int
	}{
		{
			name: "no items",
			req:  orderRequest{CustomerID: joao.ID, RestaurantID: bella.ID, DeliveryAddress: "Rua das Flores, 123"},
			want: http.StatusBadRequest,
		},
		{
			name: "inactive customer",
			req: orderRequest{CustomerID: pedro.ID, RestaurantID: bella.ID, DeliveryAddress: "Rua das Flores, 123",
				Items: []orderItemRequest{{ProductID: margherita.ID, Quantity: 1}}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "product from another restaurant",
			req: orderRequest{CustomerID: joao.ID, RestaurantID: king.ID, DeliveryAddress: "Rua das Flores, 123",
				Items: []orderItemRequest{{ProductID: margherita.ID, Quantity: 1}}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unavailable product",
			req: orderRequest{CustomerID: joao.ID, RestaurantID: king.ID, DeliveryAddress: "Rua das Flores, 123",
				Items: []orderItemRequest{{ProductID: fries.ID, Quantity: 1}}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown customer",
			req: orderRequest{CustomerID: 999999, RestaurantID: bella.ID, DeliveryAddress: "Rua das Flores, 123",
				Items: []orderItemRequest{{ProductID: margherita.ID, Quantity: 1}}},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPost(t, "/api/orders", tt.req)
			defer resp.Body.Close()
			expectStatus(t, resp, tt.want)

			body := decodeJSON[errorResponse](t, resp)
			if body.Status != tt.want || body.Path != "/api/orders" {
				t.Errorf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	joao := customerByEmail(t, "joao@email.com")
	king := restaurantByName(t, "Burger King")
	whopper := productByName(t, king.ID, "Whopper")

	o := placeOrder(t, orderRequest{
		CustomerID:      joao.ID,
		RestaurantID:    king.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Items:           []orderItemRequest{{ProductID: whopper.ID, Quantity: 1}},
	})

	for _, status := range []string{"CONFIRMED", "PREPARING", "OUT_FOR_DELIVERY"} {
		resp := do(t, http.MethodPatch, "/api/orders/"+itoa(o.ID)+"/status", map[string]string{"status": status})
		expectStatus(t, resp, http.StatusOK)
		got := decodeJSON[envelope[orderResponse]](t, resp).Data
		resp.Body.Close()
		if got.Status != status {
			t.Fatalf("status: got %q, want %q", got.Status, status)
		}
	}

	// Out for delivery can no longer be cancelled.
	resp := doPost(t, "/api/orders/"+itoa(o.ID)+"/cancel", nil)
	expectStatus(t, resp, http.StatusUnprocessableEntity)
	resp.Body.Close()

	resp = do(t, http.MethodPatch, "/api/orders/"+itoa(o.ID)+"/status", map[string]string{"status": "DELIVERED"})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = do(t, http.MethodPatch, "/api/orders/"+itoa(o.ID)+"/status", map[string]string{"status": "PENDING"})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestCancelOrder(t *testing.T) {
	joao := customerByEmail(t, "joao@email.com")
	king := restaurantByName(t, "Burger King")
	whopper := productByName(t, king.ID, "Whopper")

	o := placeOrder(t, orderRequest{
		CustomerID:      joao.ID,
		RestaurantID:    king.ID,
		DeliveryAddress: "Rua das Flores, 123",
		Items:           []orderItemRequest{{ProductID: whopper.ID, Quantity: 3}},
	})
	if o.Total != 78.5 {
		t.Errorf("total: got %v, want 78.5", o.Total)
	}

	resp := do(t, http.MethodDelete, "/api/orders/"+itoa(o.ID), nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp.Body.Close()

	resp = doGet(t, "/api/orders/"+itoa(o.ID))
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	if got := decodeJSON[envelope[orderResponse]](t, resp).Data; got.Status != "CANCELLED" {
		t.Errorf("status: got %q, want CANCELLED", got.Status)
	}
}

func TestQuoteOrder(t *testing.T) {
	bella := restaurantByName(t, "Pizzaria Bella")
	margherita := productByName(t, bella.ID, "Pizza Margherita")

	resp := doPost(t, "/api/orders/quote", map[string]any{
		"restaurantId": bella.ID,
		"items":        []orderItemRequest{{ProductID: margherita.ID, Quantity: 2}},
	})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	q := decodeJSON[envelope[struct {
		Total float64 `json:"total"`
	}]](t, resp).Data
	if q.Total != 75 {
		t.Errorf("total: got %v, want 75", q.Total)
	}
}
