package ports

import (
	"context"

	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

// ErrNotFound is returned when an item id is unknown.
var ErrNotFound = domain.ErrItemNotFound

// Repository is the catalog store.
type Repository interface {
	// Search returns one page of listings matching the query plus the unpaged total.
	Search(ctx context.Context, query domain.Query) (*domain.SearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	// GetByIDs loads items in one read. Unknown ids are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Item, error)
	SaveItem(ctx context.Context, item *domain.Item) error
	SaveCategory(ctx context.Context, category domain.Category) error
	AddReview(ctx context.Context, review domain.Review) error
}
