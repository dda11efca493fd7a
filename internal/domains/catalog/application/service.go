package application

import (
	"context"
	"strings"

	catalogtypes "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/ports"
)

// Service orchestrates the catalog bounded context use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// Search parses the raw filters and returns one page of purchasable items.
func (s *Service) Search(ctx context.Context, input catalogtypes.SearchInput) (*catalogtypes.SearchResult, error) {
	query, err := ParseQuery(input)
	if err != nil {
		return nil, err
	}
	result, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	return &catalogtypes.SearchResult{
		Listings:   result.Listings,
		Pagination: catalogtypes.NewPagination(query.Page.Number, query.Page.Size, result.Total),
	}, nil
}

// GetItem loads a single item regardless of its purchasable state.
func (s *Service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, mapError(domain.ErrEmptyID)
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return item, nil
}

var _ ports.Service = (*Service)(nil)
