package types

import "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"

// SearchInput carries raw query-string values; empty means absent.
type SearchInput struct {
	Query     string
	Category  string
	Tag       string
	MinPrice  string
	MaxPrice  string
	InStock   string
	SortBy    string
	SortOrder string
	Page      string
	Limit     string
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page        int
	Limit       int
	Total       int64
	TotalPages  int
	HasNextPage bool
	HasPrevPage bool
}

// NewPagination derives page counts from the total.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
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

// SearchResult is one page of listings.
type SearchResult struct {
	Listings   []domain.Listing
	Pagination Pagination
}
