package application

import (
	"context"
	"errors"
	"strings"
	"time"

	carttypes "github.com/Apurer/go-gin-commerce/internal/domains/cart/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/cart/ports"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Service orchestrates the cart bounded context use cases.
type Service struct {
	repo    ports.Repository
	catalog ports.CatalogReader
}

// NewService wires the cart service with its repository and catalog reader.
func NewService(repo ports.Repository, catalog ports.CatalogReader) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Get returns the owner's cart, or the empty view when there is none. It never creates a cart.
func (s *Service) Get(ctx context.Context, owner identity.Identity) (*carttypes.CartView, error) {
	if owner.IsZero() {
		return carttypes.EmptyView(), nil
	}
	if err := owner.Validate(); err != nil {
		return nil, mapError(err)
	}
	cart, err := s.repo.Get(ctx, owner)
	if errors.Is(err, ports.ErrNotFound) {
		return carttypes.EmptyView(), nil
	}
	if err != nil {
		return nil, mapError(err)
	}
	return s.view(ctx, cart)
}

// AddLine puts quantity units of an item in the owner's cart at the item's current sale price.
func (s *Service) AddLine(ctx context.Context, input carttypes.AddLineInput) (*carttypes.CartView, error) {
	if err := input.Owner.Validate(); err != nil {
		return nil, mapError(err)
	}
	if strings.TrimSpace(input.ItemID) == "" {
		return nil, mapError(domain.ErrEmptyItemID)
	}
	if input.Quantity < 1 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	item, err := s.catalog.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := item.CheckPurchase(input.Quantity); err != nil {
		return nil, mapError(err)
	}
	cart, err := s.repo.AddLine(ctx, input.Owner, item.ID, input.Quantity, item.SalePrice())
	if err != nil {
		return nil, mapError(err)
	}
	return s.view(ctx, cart)
}

// Clear empties the owner's cart.
func (s *Service) Clear(ctx context.Context, owner identity.Identity) error {
	if err := owner.Validate(); err != nil {
		return mapError(err)
	}
	return mapError(s.repo.Clear(ctx, owner))
}

// PurgeAnonymous removes abandoned session carts.
func (s *Service) PurgeAnonymous(ctx context.Context, olderThan time.Time) (int64, error) {
	removed, err := s.repo.PurgeAnonymous(ctx, olderThan)
	if err != nil {
		return 0, mapError(err)
	}
	return removed, nil
}

func (s *Service) view(ctx context.Context, cart *domain.Cart) (*carttypes.CartView, error) {
	ids := make([]string, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		ids = append(ids, line.ItemID)
	}
	items := map[string]*catalogdomain.Item{}
	if len(ids) > 0 {
		found, err := s.catalog.GetByIDs(ctx, ids)
		if err != nil {
			return nil, mapError(err)
		}
		items = found
	}
	return carttypes.NewView(cart, items), nil
}

var _ ports.Service = (*Service)(nil)
