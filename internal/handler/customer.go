package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

func decodeCustomer(w http.ResponseWriter, r *http.Request) (customer.Input, error) {
	var in customer.Input
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = readStr(d)
		case "email":
			in.Email, err = readStr(d)
		case "phone":
			in.Phone, err = readStr(d)
		case "address":
			in.Address, err = readStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCustomer(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.customers.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/customers/"+strconv.FormatInt(c.ID, 10))
	h.respond(w, http.StatusCreated, "customer registered", view.One(c, view.Customer))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListActive(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(customers, view.Customer))
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(c, view.Customer))
}

// findCustomerByEmail handles GET /api/customers/search?email=.
func (h *Handler) findCustomerByEmail(w http.ResponseWriter, r *http.Request) {
	email := newQuery(r).str("email")
	if email == "" {
		h.fail(w, r, fault.Invalid("email", "is required", nil))
		return
	}
	c, err := h.customers.GetByEmail(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(c, view.Customer))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeCustomer(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.customers.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "customer updated", view.One(c, view.Customer))
}

// toggleCustomer handles PATCH /api/customers/{id}/status.
func (h *Handler) toggleCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.customers.ToggleActive(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "customer status updated", view.One(c, view.Customer))
}
