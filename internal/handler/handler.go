// Package handler exposes the delivery domain services over HTTP as JSON
// resources under /api.
package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// Services holds the domain services served by the Handler.
type Services struct {
	Orders      *order.Service
	Customers   *customer.Service
	Restaurants *restaurant.Service
	Products    *product.Service
	Reports     *report.Service
}

// Handler serves the REST API, delegating business logic to the domain
// services and translating their errors into error bodies.
type Handler struct {
	orders      *order.Service
	customers   *customer.Service
	restaurants *restaurant.Service
	products    *product.Service
	reports     *report.Service

	ordersPlaced  metric.Int64Counter
	statusChanges metric.Int64Counter

	now func() time.Time
}

// NewHandler constructs a Handler and registers its metrics on meter.
func NewHandler(s Services, meter metric.Meter) (*Handler, error) {
	placed, err := meter.Int64Counter("delivery.orders.placed",
		metric.WithDescription("Number of orders placed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders placed counter")
	}
	changes, err := meter.Int64Counter("delivery.orders.status_changes",
		metric.WithDescription("Number of order status changes by target status"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create status changes counter")
	}

	return &Handler{
		orders:        s.Orders,
		customers:     s.Customers,
		restaurants:   s.Restaurants,
		products:      s.Products,
		reports:       s.Reports,
		ordersPlaced:  placed,
		statusChanges: changes,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register adds all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Orders.
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("POST /api/orders/quote", h.quoteOrder)
	mux.HandleFunc("GET /api/customers/{id}/orders", h.listCustomerOrders)
	mux.HandleFunc("GET /api/restaurants/{id}/orders", h.listRestaurantOrders)

	// Customers.
	mux.HandleFunc("POST /api/customers", h.createCustomer)
	mux.HandleFunc("GET /api/customers", h.listCustomers)
	mux.HandleFunc("GET /api/customers/search", h.findCustomerByEmail)
	mux.HandleFunc("GET /api/customers/{id}", h.getCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.updateCustomer)
	mux.HandleFunc("PATCH /api/customers/{id}/status", h.toggleCustomer)

	// Restaurants.
	mux.HandleFunc("POST /api/restaurants", h.createRestaurant)
	mux.HandleFunc("GET /api/restaurants", h.listRestaurants)
	mux.HandleFunc("GET /api/restaurants/{id}", h.getRestaurant)
	mux.HandleFunc("PUT /api/restaurants/{id}", h.updateRestaurant)
	mux.HandleFunc("PATCH /api/restaurants/{id}/status", h.setRestaurantActive)
	mux.HandleFunc("GET /api/categories/{category}/restaurants", h.listRestaurantsByCategory)

	// Products.
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products/search", h.searchProducts)
	mux.HandleFunc("GET /api/products/category/{category}", h.listProductsByCategory)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)
	mux.HandleFunc("PATCH /api/products/{id}/availability", h.toggleProduct)
	mux.HandleFunc("GET /api/restaurants/{id}/products", h.listRestaurantProducts)

	// Reports.
	mux.HandleFunc("GET /api/reports/sales-by-restaurant", h.salesByRestaurant)
	mux.HandleFunc("GET /api/reports/top-products", h.topProducts)
	mux.HandleFunc("GET /api/reports/top-customers", h.topCustomers)
	mux.HandleFunc("GET /api/reports/orders-by-period", h.ordersByPeriod)
	mux.HandleFunc("GET /api/reports/summary", h.reportSummary)

	mux.HandleFunc("/api/", h.notFound)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, fault.NotFound("route", r.Method+" "+r.URL.Path))
}
