package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

var errStatusRequired = fault.Invalid("status", "is required", nil)

func decodeItems(d *jx.Decoder) ([]order.ItemRequest, error) {
	var items []order.ItemRequest
	err := d.Arr(func(d *jx.Decoder) error {
		var it order.ItemRequest
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var err error
			switch string(key) {
			case "productId":
				it.ProductID, err = readInt64(d)
			case "quantity":
				it.Quantity, err = readInt(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

// placeOrder handles POST /api/orders.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceRequest
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerId":
			req.CustomerID, err = readInt64(d)
		case "restaurantId":
			req.RestaurantID, err = readInt64(d)
		case "deliveryAddress":
			req.DeliveryAddress, err = readStr(d)
		case "items":
			req.Items, err = decodeItems(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	o, err := h.orders.Place(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ordersPlaced.Add(r.Context(), 1)

	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(o.ID, 10))
	h.respond(w, http.StatusCreated, "order placed successfully", view.One(o, view.Order))
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(o, view.Order))
}

// listOrders handles GET /api/orders with filters and paging.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)

	var f order.Filter
	if raw := q.str("status"); raw != "" {
		st, ok := order.ParseStatus(raw)
		if !ok {
			q.add("status", "must be one of: "+statusList(), raw)
		}
		f.Status = st
	}
	f.CustomerID = q.id("customerId")
	f.RestaurantID = q.id("restaurantId")
	f.From = q.timestamp("from", false)
	f.To = q.timestamp("to", true)

	req := order.PageRequest{
		Page: q.number("page", 0),
		Size: q.number("size", order.DefaultPageSize),
		Sort: order.SortField(q.str("sort")),
	}
	switch dir := q.str("dir"); dir {
	case "", "asc", "ASC":
	case "desc", "DESC":
		req.Desc = true
	default:
		q.add("dir", "must be asc or desc", dir)
	}
	if err := q.err(); err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.orders.ListPaged(r.Context(), f, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, func(e *jx.Encoder) { encodePage(e, r.URL, page) })
}

// listCustomerOrders handles GET /api/customers/{id}/orders.
func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	orders, err := h.orders.ListByCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(orders, view.Order))
}

// listRestaurantOrders handles GET /api/restaurants/{id}/orders.
func (h *Handler) listRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	orders, err := h.orders.ListByRestaurant(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(orders, view.Order))
}

// updateOrderStatus handles PATCH /api/orders/{id}/status.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var status string
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		var err error
		status, err = readStr(d)
		return err
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	if status == "" {
		h.fail(w, r, errStatusRequired)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.countStatusChange(r, o.Status)
	h.respond(w, http.StatusOK, "order status updated", view.One(o, view.Order))
}

// cancelOrder handles POST /api/orders/{id}/cancel and returns the order.
func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.cancel(w, r)
	if !ok {
		return
	}
	h.respond(w, http.StatusOK, "order cancelled", view.One(o, view.Order))
}

// deleteOrder handles DELETE /api/orders/{id}. Orders are cancelled, never
// removed.
func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.cancel(w, r); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) (*order.Order, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	o, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	h.countStatusChange(r, o.Status)
	return o, true
}

// quoteOrder handles POST /api/orders/quote.
func (h *Handler) quoteOrder(w http.ResponseWriter, r *http.Request) {
	var req order.QuoteRequest
	if err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "restaurantId":
			req.RestaurantID, err = readInt64(d)
		case "items":
			req.Items, err = decodeItems(d)
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		h.fail(w, r, err)
		return
	}

	q, err := h.orders.Quote(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(q, view.Quote))
}

func (h *Handler) countStatusChange(r *http.Request, s order.Status) {
	h.statusChanges.Add(r.Context(), 1,
		metric.WithAttributes(attribute.String("status", string(s))),
	)
}

func statusList() string {
	statuses := order.Statuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// encodePage renders a page as {content, page, links}. Links keep the
// request query and replace the page number.
func encodePage(e *jx.Encoder, u *url.URL, p *order.Page) {
	link := func(n int) string {
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		return u.Path + "?" + q.Encode()
	}

	e.ObjStart()
	e.FieldStart("content")
	view.List(p.Items, view.Order)(e)

	e.FieldStart("page")
	e.ObjStart()
	e.FieldStart("number")
	e.Int(p.Number)
	e.FieldStart("size")
	e.Int(p.Size)
	e.FieldStart("totalElements")
	e.Int64(p.TotalElements)
	e.FieldStart("totalPages")
	e.Int(p.TotalPages)
	e.FieldStart("first")
	e.Bool(p.First)
	e.FieldStart("last")
	e.Bool(p.Last)
	e.ObjEnd()

	e.FieldStart("links")
	e.ObjStart()
	e.FieldStart("first")
	e.Str(link(0))
	e.FieldStart("last")
	e.Str(link(p.LastNumber()))
	if p.Next != nil {
		e.FieldStart("next")
		e.Str(link(*p.Next))
	}
	if p.Prev != nil {
		e.FieldStart("prev")
		e.Str(link(*p.Prev))
	}
	e.ObjEnd()
	e.ObjEnd()
}
