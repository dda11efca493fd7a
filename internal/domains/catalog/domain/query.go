package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// SortField enumerates the columns a search may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortPrice     SortField = "price"
	SortTitle     SortField = "title"
	SortStock     SortField = "stock"
)

// SortOrder is the direction of the primary sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Clause is one conjunct of a search predicate.
type Clause interface {
	clause()
}

// TextMatch matches the term case-insensitively against title or description.
type TextMatch struct{ Term string }

// CategoryIs restricts to a category referenced by id or slug.
type CategoryIs struct{ Ref string }

// TagIs restricts to items carrying the tag (case-insensitive).
type TagIs struct{ Name string }

// PriceAtLeast is an inclusive lower price bound.
type PriceAtLeast struct{ Amount decimal.Decimal }

// PriceAtMost is an inclusive upper price bound.
type PriceAtMost struct{ Amount decimal.Decimal }

// InStock restricts to items with stock above zero.
type InStock struct{}

// Purchasable restricts to published items in the AVAILABLE state.
type Purchasable struct{}

func (TextMatch) clause()    {}
func (CategoryIs) clause()   {}
func (TagIs) clause()        {}
func (PriceAtLeast) clause() {}
func (PriceAtMost) clause()  {}
func (InStock) clause()      {}
func (Purchasable) clause()  {}

// Predicate is a conjunction of clauses.
type Predicate []Clause

// Matches evaluates the predicate in memory. categorySlug is the slug of the
// item's category, or empty when unknown.
func (p Predicate) Matches(item *Item, categorySlug string) bool {
	for _, c := range p {
		if !matchClause(c, item, categorySlug) {
			return false
		}
	}
	return true
}

func matchClause(c Clause, item *Item, categorySlug string) bool {
	switch clause := c.(type) {
	case TextMatch:
		term := strings.ToLower(clause.Term)
		return strings.Contains(strings.ToLower(item.Title), term) ||
			strings.Contains(strings.ToLower(item.Description), term)
	case CategoryIs:
		return item.CategoryID == clause.Ref || (categorySlug != "" && categorySlug == clause.Ref)
	case TagIs:
		for _, tag := range item.Tags {
			if strings.EqualFold(tag, clause.Name) {
				return true
			}
		}
		return false
	case PriceAtLeast:
		return item.Price.GreaterThanOrEqual(clause.Amount)
	case PriceAtMost:
		return item.Price.LessThanOrEqual(clause.Amount)
	case InStock:
		return item.Stock > 0
	case Purchasable:
		return item.Purchasable()
	default:
		return false
	}
}

// Sort orders results by a field, always breaking ties by ascending id.
type Sort struct {
	Field SortField
	Order SortOrder
}

// Less reports whether a sorts before b.
func (s Sort) Less(a, b *Item) bool {
	cmp := 0
	switch s.Field {
	case SortPrice:
		cmp = a.Price.Cmp(b.Price)
	case SortTitle:
		cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortStock:
		cmp = compareInts(a.Stock, b.Stock)
	default:
		cmp = compareInts64(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	}
	if s.Order == SortDesc {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.ID < b.ID
}

// Page addresses one window of results.
type Page struct {
	Number int
	Size   int
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Query is a fully parsed catalog search.
type Query struct {
	Predicate Predicate
	Sort      Sort
	Page      Page
}

// Listing is an item as returned by search, with its read-time rating.
type Listing struct {
	Item          *Item
	AverageRating float64
}

// SearchResult is one page of listings plus the unpaged total.
type SearchResult struct {
	Listings []Listing
	Total    int64
}

func compareInts(a, b int) int {
	return compareInts64(int64(a), int64(b))
}

func compareInts64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
