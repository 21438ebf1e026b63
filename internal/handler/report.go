package handler

import (
	"net/http"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/view"
)

// reportParams reads the from, to and limit query parameters.
func reportParams(r *http.Request) (report.Period, int, error) {
	q := newQuery(r)
	p := report.Period{
		From: q.timestamp("from", false),
		To:   q.timestamp("to", true),
	}
	limit := q.number("limit", 0)
	if limit < 0 {
		q.add("limit", "must be greater than or equal to 0", limit)
	}
	return p, limit, q.err()
}

func (h *Handler) salesByRestaurant(w http.ResponseWriter, r *http.Request) {
	p, _, err := reportParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sales, err := h.reports.SalesByRestaurant(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(sales, view.RestaurantSales))
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	_, limit, err := reportParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	top, err := h.reports.TopProducts(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(top, view.ProductSales))
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	_, limit, err := reportParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	top, err := h.reports.TopCustomers(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(top, view.CustomerRanking))
}

func (h *Handler) ordersByPeriod(w http.ResponseWriter, r *http.Request) {
	p, _, err := reportParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lines, err := h.reports.OrdersInPeriod(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.List(lines, view.OrderLine))
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	p, limit, err := reportParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.reports.Summary(r.Context(), p, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, view.One(s, view.Summary))
}
