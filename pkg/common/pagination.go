package common

import (
	"net/http"
	"strconv"
)

// PaginationParams are the page-number parameters accepted by list
// endpoints.
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ExtractPaginationParams reads ?page and ?page_size, clamping both
// to sane bounds.
func ExtractPaginationParams(r *http.Request, maxPageSize int) PaginationParams {
	params := PaginationParams{Page: 1, PageSize: 20}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			if size > maxPageSize {
				size = maxPageSize
			}
			params.PageSize = size
		}
	}
	return params
}

// Offset converts the page number to a record offset.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationInfo describes one page of a listing in the response
// metadata.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// BuildPaginationMeta builds the pagination metadata for a page.
func BuildPaginationMeta(params PaginationParams, total int) *PaginationInfo {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (total + params.PageSize - 1) / params.PageSize
	}
	return &PaginationInfo{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
