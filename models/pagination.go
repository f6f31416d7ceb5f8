package models

import "fmt"

// Pagination describes one page of a list result.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives page counts and flags from page, limit and total.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Check verifies that the navigation flags agree with page and totalPages.
func (p Pagination) Check() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", p.Page)
	}
	if p.HasNextPage != (p.Page < p.TotalPages) {
		return fmt.Errorf("hasNextPage=%t disagrees with page %d of %d", p.HasNextPage, p.Page, p.TotalPages)
	}
	if p.HasPrevPage != (p.Page > 1) {
		return fmt.Errorf("hasPrevPage=%t disagrees with page %d", p.HasPrevPage, p.Page)
	}
	return nil
}
