package domain

import (
	"net/url"
	"strconv"
)

// SortOrder is the direction of a sorted listing.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Pagination carries the optional listing parameters. Zero-valued fields are
// left out of the query string.
type Pagination struct {
	Page  int
	Limit int
	Sort  string
	Order SortOrder
}

// Encode adds the set parameters to q.
func (p *Pagination) Encode(q url.Values) {
	if p == nil {
		return
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Order != "" {
		q.Set("order", string(p.Order))
	}
}

// ParsePagination reads page, limit, sort and order from q. Invalid or
// missing values stay at their zero value.
func ParsePagination(q url.Values) *Pagination {
	p := &Pagination{Sort: q.Get("sort")}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		p.Limit = n
	}
	switch SortOrder(q.Get("order")) {
	case OrderAsc:
		p.Order = OrderAsc
	case OrderDesc:
		p.Order = OrderDesc
	}
	return p
}

// Page is the envelope returned by the /paginated endpoints.
type Page[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
