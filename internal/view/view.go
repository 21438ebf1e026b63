// Package view renders domain values as JSON with jx. Field names and
// number formats are shared by the HTTP API and the command-line tools.
package view

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
)

// Money is always rendered with two decimal places.
func Money(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}

// Time is rendered as RFC 3339 in UTC.
func Time(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

// List encodes items as an array.
func List[T any](items []T, fn func(e *jx.Encoder, v *T)) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.ArrStart()
		for i := range items {
			fn(e, &items[i])
		}
		e.ArrEnd()
	}
}

// One binds v to fn.
func One[T any](v *T, fn func(e *jx.Encoder, v *T)) func(e *jx.Encoder) {
	return func(e *jx.Encoder) { fn(e, v) }
}

// Order encodes an order with its items.
func Order(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("customerId")
	e.Int64(o.CustomerID)
	e.FieldStart("customerName")
	e.Str(o.CustomerName)
	e.FieldStart("restaurantId")
	e.Int64(o.RestaurantID)
	e.FieldStart("restaurantName")
	e.Str(o.RestaurantName)
	e.FieldStart("deliveryAddress")
	e.Str(o.DeliveryAddress)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("subtotal")
	Money(e, o.Subtotal)
	e.FieldStart("deliveryFee")
	Money(e, o.DeliveryFee)
	e.FieldStart("total")
	Money(e, o.Total)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(it.ID)
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("productName")
		e.Str(it.ProductName)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("unitPrice")
		Money(e, it.UnitPrice)
		e.FieldStart("subtotal")
		Money(e, it.Subtotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("createdAt")
	Time(e, o.CreatedAt)
	e.FieldStart("updatedAt")
	Time(e, o.UpdatedAt)
	e.ObjEnd()
}

func Quote(e *jx.Encoder, q *order.Quote) {
	e.ObjStart()
	e.FieldStart("restaurantId")
	e.Int64(q.RestaurantID)
	e.FieldStart("subtotal")
	Money(e, q.Subtotal)
	e.FieldStart("deliveryFee")
	Money(e, q.DeliveryFee)
	e.FieldStart("total")
	Money(e, q.Total)
	e.FieldStart("items")
	e.ArrStart()
	for _, l := range q.Lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(l.ProductID)
		e.FieldStart("productName")
		e.Str(l.ProductName)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.FieldStart("unitPrice")
		Money(e, l.UnitPrice)
		e.FieldStart("subtotal")
		Money(e, l.Subtotal)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func Customer(e *jx.Encoder, c *customer.Customer) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("email")
	e.Str(c.Email)
	e.FieldStart("phone")
	e.Str(c.Phone)
	e.FieldStart("address")
	e.Str(c.Address)
	e.FieldStart("active")
	e.Bool(c.Active)
	e.FieldStart("createdAt")
	Time(e, c.CreatedAt)
	e.ObjEnd()
}

func Restaurant(e *jx.Encoder, r *restaurant.Restaurant) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(r.ID)
	e.FieldStart("name")
	e.Str(r.Name)
	e.FieldStart("category")
	e.Str(string(r.Category))
	e.FieldStart("address")
	e.Str(r.Address)
	e.FieldStart("phone")
	e.Str(r.Phone)
	if r.PostalCode != "" {
		e.FieldStart("postalCode")
		e.Str(r.PostalCode)
	}
	e.FieldStart("deliveryFee")
	Money(e, r.DeliveryFee)
	e.FieldStart("rating")
	if r.Rating != nil {
		e.Num(jx.Num(r.Rating.String()))
	} else {
		e.Null()
	}
	e.FieldStart("active")
	e.Bool(r.Active)
	e.ObjEnd()
}

func Product(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	Money(e, p.Price)
	e.FieldStart("category")
	e.Str(string(p.Category))
	e.FieldStart("available")
	e.Bool(p.Available)
	e.FieldStart("restaurantId")
	e.Int64(p.RestaurantID)
	e.ObjEnd()
}

func RestaurantSales(e *jx.Encoder, s *report.RestaurantSales) {
	e.ObjStart()
	e.FieldStart("restaurantId")
	e.Int64(s.RestaurantID)
	e.FieldStart("restaurantName")
	e.Str(s.RestaurantName)
	e.FieldStart("totalSales")
	Money(e, s.Revenue)
	e.FieldStart("orderCount")
	e.Int64(s.Orders)
	e.ObjEnd()
}

func ProductSales(e *jx.Encoder, s *report.ProductSales) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(s.ProductID)
	e.FieldStart("productName")
	e.Str(s.ProductName)
	e.FieldStart("quantitySold")
	e.Int64(s.Quantity)
	e.FieldStart("revenue")
	Money(e, s.Revenue)
	e.ObjEnd()
}

func CustomerRanking(e *jx.Encoder, c *report.CustomerRanking) {
	e.ObjStart()
	e.FieldStart("customerId")
	e.Int64(c.CustomerID)
	e.FieldStart("customerName")
	e.Str(c.CustomerName)
	e.FieldStart("orderCount")
	e.Int64(c.Orders)
	e.FieldStart("totalSpent")
	Money(e, c.Spent)
	e.ObjEnd()
}

func OrderLine(e *jx.Encoder, l *report.OrderLine) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Int64(l.OrderID)
	e.FieldStart("customerName")
	e.Str(l.CustomerName)
	e.FieldStart("restaurantName")
	e.Str(l.RestaurantName)
	e.FieldStart("status")
	e.Str(string(l.Status))
	e.FieldStart("total")
	Money(e, l.Total)
	e.FieldStart("createdAt")
	Time(e, l.CreatedAt)
	e.ObjEnd()
}

// Summary encodes every report of one period.
func Summary(e *jx.Encoder, s *report.Summary) {
	e.ObjStart()
	e.FieldStart("salesByRestaurant")
	List(s.Sales, RestaurantSales)(e)
	e.FieldStart("topProducts")
	List(s.TopProducts, ProductSales)(e)
	e.FieldStart("topCustomers")
	List(s.TopCustomers, CustomerRanking)(e)
	e.FieldStart("orders")
	List(s.Orders, OrderLine)(e)
	e.ObjEnd()
}

// Marshal renders fn into a standalone JSON document.
func Marshal(fn func(e *jx.Encoder)) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fn(e)
	return append([]byte(nil), e.Bytes()...)
}
