package helpers

import (
	"fmt"
	"net/url"
	"strconv"

	"sportsregistration/internal/domain"
)

// ParsePagination reads page and page_size from query. Missing values take the
// defaults; anything that is not an integer in range is rejected.
func ParsePagination(query url.Values) (domain.PaginationParams, error) {
	params := domain.PaginationParams{Page: 1, PageSize: domain.DefaultPageSize}

	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return domain.PaginationParams{}, fmt.Errorf("page must be a positive integer, got %q", s)
		}
		params.Page = v
	}
	if s := query.Get("page_size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > domain.MaxPageSize {
			return domain.PaginationParams{}, fmt.Errorf("page_size must be an integer between 1 and %d, got %q", domain.MaxPageSize, s)
		}
		params.PageSize = v
	}
	return params, nil
}

// PaginationMeta is the pagination metadata included in paginated list responses.
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta describes the page that was served out of total matching rows.
func NewPaginationMeta(page domain.PaginationParams, total int) PaginationMeta {
	page = page.Normalize()
	return PaginationMeta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: (total + page.PageSize - 1) / page.PageSize,
	}
}
