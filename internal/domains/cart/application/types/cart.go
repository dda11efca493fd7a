package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// AddLineInput is the payload of an add-to-cart request.
type AddLineInput struct {
	Owner    identity.Identity
	ItemID   string
	Quantity int
}

// LineView is a cart line joined with its item projection.
type LineView struct {
	Line      domain.Line
	Item      *catalogdomain.Summary
	LineTotal decimal.Decimal
}

// CartView is the read model of a cart. The zero-line view stands in for a missing cart.
type CartView struct {
	ID        string
	Lines     []LineView
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
	UpdatedAt time.Time
}

// EmptyView is returned when the caller has no cart.
func EmptyView() *CartView {
	return &CartView{Lines: []LineView{}, Subtotal: decimal.Zero, Total: decimal.Zero}
}

// NewView projects a cart with the items found for its lines.
func NewView(cart *domain.Cart, items map[string]*catalogdomain.Item) *CartView {
	if cart == nil {
		return EmptyView()
	}
	view := &CartView{
		ID:        cart.ID,
		Lines:     make([]LineView, 0, len(cart.Lines)),
		Subtotal:  cart.Subtotal(),
		ItemCount: cart.ItemCount(),
		UpdatedAt: cart.UpdatedAt,
	}
	view.Total = view.Subtotal
	for _, line := range cart.Lines {
		lv := LineView{Line: line, LineTotal: line.Total()}
		if item, ok := items[line.ItemID]; ok && item != nil {
			summary := item.Summary()
			lv.Item = &summary
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}
