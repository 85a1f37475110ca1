package helpers

import (
	"net/http"
	"strconv"

	"partyhaus/internal/domain"
)

// Pagination bounds. Out-of-range values fall back silently; a malformed page
// number is not worth a 400 on a list endpoint.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the query string. Missing or
// malformed values take the defaults; page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), DefaultPage)
	size := positiveInt(q.Get("page_size"), DefaultPageSize)
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return domain.PaginationParams{Page: page, PageSize: size}
}

func positiveInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// PaginationMeta describes one page of a list response.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta derives the page count from the total row count.
// A zero page size yields zero pages.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		meta.TotalPages = (total + pageSize - 1) / pageSize
	}
	return meta
}
