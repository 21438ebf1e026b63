package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

func decodeProduct(w http.ResponseWriter, r *http.Request) (product.Input, error) {
	var in product.Input
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = readStr(d)
		case "description":
			in.Description, err = readStr(d)
		case "price":
			in.Price, err = readDecimal(d)
		case "category":
			in.Category, err = readStr(d)
		case "available":
			in.Available, err = readOptBool(d)
		case "restaurantId":
			in.RestaurantID, err = readInt64(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := decodeProduct(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/products/"+strconv.FormatInt(p.ID, 10))
	h.respond(w, http.StatusCreated, "product created", view.One(p, view.Product))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(p, view.Product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeProduct(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "product updated", view.One(p, view.Product))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleProduct handles PATCH /api/products/{id}/availability.
func (h *Handler) toggleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.products.ToggleAvailability(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "product availability updated", view.One(p, view.Product))
}

// listRestaurantProducts handles GET /api/restaurants/{id}/products?available=.
func (h *Handler) listRestaurantProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := newQuery(r)
	available := q.boolean("available")
	if err := q.err(); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.products.ListByRestaurant(r.Context(), id, available)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(list, view.Product))
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(list, view.Product))
}

// searchProducts handles GET /api/products/search?name=.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.SearchByName(r.Context(), newQuery(r).str("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(list, view.Product))
}
