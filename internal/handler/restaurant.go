package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

func decodeRestaurant(w http.ResponseWriter, r *http.Request) (restaurant.Input, error) {
	var in restaurant.Input
	err := decodeBody(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			in.Name, err = readStr(d)
		case "category":
			in.Category, err = readStr(d)
		case "address":
			in.Address, err = readStr(d)
		case "phone":
			in.Phone, err = readStr(d)
		case "postalCode":
			in.PostalCode, err = readStr(d)
		case "deliveryFee":
			in.DeliveryFee, err = readDecimal(d)
		case "rating":
			in.Rating, err = readOptDecimal(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return in, err
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	in, err := decodeRestaurant(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.restaurants.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/restaurants/"+strconv.FormatInt(res.ID, 10))
	h.respond(w, http.StatusCreated, "restaurant created", view.One(res, view.Restaurant))
}

// listRestaurants handles GET /api/restaurants?category=&active=.
func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := restaurant.Filter{Active: q.boolean("active")}
	if raw := q.str("category"); raw != "" {
		c, ok := restaurant.ParseCategory(raw)
		if !ok {
			q.add("category", restaurant.CategoryMessage(), raw)
		}
		f.Category = c
	}
	if err := q.err(); err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.restaurants.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(list, view.Restaurant))
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.restaurants.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(res, view.Restaurant))
}

// listRestaurantsByCategory handles GET /api/categories/{category}/restaurants.
func (h *Handler) listRestaurantsByCategory(w http.ResponseWriter, r *http.Request) {
	list, err := h.restaurants.ListByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(list, view.Restaurant))
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeRestaurant(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.restaurants.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "restaurant updated", view.One(res, view.Restaurant))
}

// setRestaurantActive handles PATCH /api/restaurants/{id}/status?active=.
func (h *Handler) setRestaurantActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := newQuery(r)
	active := q.boolean("active")
	if err := q.err(); err != nil {
		h.fail(w, r, err)
		return
	}
	if active == nil {
		h.fail(w, r, fault.Invalid("active", "is required", nil))
		return
	}

	res, err := h.restaurants.SetActive(r.Context(), id, *active)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, "restaurant status updated", view.One(res, view.Restaurant))
}
