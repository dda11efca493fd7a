package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

// Item is the HTTP representation of a catalog listing.
type Item struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discountPrice,omitempty"`
	Stock         int       `json:"stock"`
	Status        string    `json:"status"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Tags          []string  `json:"tags"`
	SellerID      string    `json:"sellerId,omitempty"`
	AverageRating float64   `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ItemSummary is the minimal projection embedded in carts and orders.
type ItemSummary struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Stock  int    `json:"stock"`
}

// Pagination mirrors the search paging envelope.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Items      []Item     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Money renders a decimal amount as a JSON number with two decimals.
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// FromSearchResult maps a page of listings to the transport shape.
func FromSearchResult(result *catalogtypes.SearchResult) SearchResponse {
	resp := SearchResponse{Items: []Item{}}
	if result == nil {
		return resp
	}
	for _, listing := range result.Listings {
		resp.Items = append(resp.Items, FromListing(listing))
	}
	p := result.Pagination
	resp.Pagination = Pagination{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       p.Total,
		TotalPages:  p.TotalPages,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
	}
	return resp
}

// FromListing maps one listing.
func FromListing(listing domain.Listing) Item {
	item := listing.Item
	out := Item{
		ID:            item.ID,
		Slug:          item.Slug,
		Title:         item.Title,
		Description:   item.Description,
		Price:         Money(item.Price),
		Stock:         item.Stock,
		Status:        string(item.Status),
		CategoryID:    item.CategoryID,
		Tags:          append([]string{}, item.Tags...),
		SellerID:      item.SellerID,
		AverageRating: listing.AverageRating,
		CreatedAt:     item.CreatedAt,
	}
	if item.DiscountPrice != nil {
		discount := Money(*item.DiscountPrice)
		out.DiscountPrice = &discount
	}
	return out
}

// FromSummary maps the minimal item projection; nil stays nil.
func FromSummary(summary *domain.Summary) *ItemSummary {
	if summary == nil {
		return nil
	}
	return &ItemSummary{
		ID:     summary.ID,
		Slug:   summary.Slug,
		Title:  summary.Title,
		Status: string(summary.Status),
		Stock:  summary.Stock,
	}
}
