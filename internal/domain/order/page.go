package order

import (
	"math"
	"strconv"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/fault"
)

// Paging limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxPage keeps Page*MaxPageSize within int.
const MaxPage = math.MaxInt / MaxPageSize

// SortField names an order attribute listings can be sorted by.
type SortField string

const (
	SortID        SortField = "id"
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTotal     SortField = "total"
	SortStatus    SortField = "status"
)

var sortFields = []SortField{SortID, SortCreatedAt, SortUpdatedAt, SortTotal, SortStatus}

// ParseSortField returns the sort field named s.
func ParseSortField(s string) (SortField, bool) {
	for _, f := range sortFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// PageRequest selects a zero-based page of a sorted listing.
type PageRequest struct {
	Page int
	Size int
	Sort SortField
	Desc bool
}

// Validate checks the page bounds and sort field.
func (r PageRequest) Validate() error {
	v := &fault.ValidationError{}
	switch {
	case r.Page < 0:
		v.Add("page", "must be greater than or equal to 0", r.Page)
	case r.Page > MaxPage:
		v.Add("page", "must be less than or equal to "+strconv.Itoa(MaxPage), r.Page)
	}
	if r.Size < 1 || r.Size > MaxPageSize {
		v.Add("size", "must be between 1 and 100", r.Size)
	}
	if _, ok := ParseSortField(string(r.Sort)); !ok {
		v.Add("sort", "must be one of: id, createdAt, updatedAt, total, status", string(r.Sort))
	}
	return v.Err()
}

// Offset returns the number of rows to skip.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one slice of a paged listing with navigation metadata. Next and
// Prev are nil when there is no such page.
type Page struct {
	Items         []Order
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
	Next          *int
	Prev          *int
}

// NewPage derives navigation metadata from the request and total count.
func NewPage(items []Order, req PageRequest, total int64) *Page {
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	p := &Page{
		Items:         items,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		First:         req.Page == 0,
		Last:          req.Page >= pages-1,
	}
	if req.Page < pages-1 {
		next := req.Page + 1
		p.Next = &next
	}
	if req.Page > 0 {
		prev := min(req.Page-1, max(pages-1, 0))
		p.Prev = &prev
	}
	return p
}

// LastNumber returns the number of the last page, 0 when there are none.
func (p *Page) LastNumber() int {
	return max(p.TotalPages-1, 0)
}
