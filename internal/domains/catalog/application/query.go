package application

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ParseQuery turns raw search input into a typed query. Purchasable is always part of the predicate.
func ParseQuery(input catalogtypes.SearchInput) (domain.Query, error) {
	predicate := domain.Predicate{domain.Purchasable{}}

	if term := strings.TrimSpace(input.Query); term != "" {
		predicate = append(predicate, domain.TextMatch{Term: term})
	}
	if ref := strings.TrimSpace(input.Category); ref != "" {
		predicate = append(predicate, domain.CategoryIs{Ref: ref})
	}
	if tag := strings.TrimSpace(input.Tag); tag != "" {
		predicate = append(predicate, domain.TagIs{Name: tag})
	}

	minPrice, err := parsePrice("minPrice", input.MinPrice)
	if err != nil {
		return domain.Query{}, err
	}
	maxPrice, err := parsePrice("maxPrice", input.MaxPrice)
	if err != nil {
		return domain.Query{}, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return domain.Query{}, invalid("minPrice must not exceed maxPrice")
	}
	if minPrice != nil {
		predicate = append(predicate, domain.PriceAtLeast{Amount: *minPrice})
	}
	if maxPrice != nil {
		predicate = append(predicate, domain.PriceAtMost{Amount: *maxPrice})
	}

	if raw := strings.TrimSpace(input.InStock); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Query{}, invalid("inStock must be a boolean")
		}
		if inStock {
			predicate = append(predicate, domain.InStock{})
		}
	}

	sort, err := parseSort(input.SortBy, input.SortOrder)
	if err != nil {
		return domain.Query{}, err
	}
	page, err := parsePositive("page", input.Page, 1)
	if err != nil {
		return domain.Query{}, err
	}
	limit, err := parsePositive("limit", input.Limit, DefaultPageSize)
	if err != nil {
		return domain.Query{}, err
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page-1 > math.MaxInt32/limit {
		return domain.Query{}, invalid("page is too large")
	}

	return domain.Query{
		Predicate: predicate,
		Sort:      sort,
		Page:      domain.Page{Number: page, Size: limit},
	}, nil
}

func parsePrice(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return nil, invalid("%s must be a non-negative number", name)
	}
	return &value, nil
}

func parsePositive(name, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, invalid("%s must be an integer of at least 1", name)
	}
	return value, nil
}

func parseSort(rawField, rawOrder string) (domain.Sort, error) {
	sort := domain.Sort{Field: domain.SortCreatedAt, Order: domain.SortDesc}
	switch field := domain.SortField(strings.TrimSpace(rawField)); field {
	case "":
	case domain.SortCreatedAt, domain.SortPrice, domain.SortTitle, domain.SortStock:
		sort.Field = field
	default:
		return domain.Sort{}, invalid("sortBy must be one of createdAt, price, title, stock")
	}
	switch order := domain.SortOrder(strings.ToLower(strings.TrimSpace(rawOrder))); order {
	case "":
	case domain.SortAsc, domain.SortDesc:
		sort.Order = order
	default:
		return domain.Sort{}, invalid("sortOrder must be asc or desc")
	}
	return sort, nil
}
