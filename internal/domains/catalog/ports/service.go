package ports

import (
	"context"

	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

// Service defines the catalog use cases exposed to adapters (inbound/driving port).
type Service interface {
	Search(ctx context.Context, input catalogtypes.SearchInput) (*catalogtypes.SearchResult, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
}
