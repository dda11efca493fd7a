package mapper

import (
	carttypes "github.com/Apurer/go-gin-commerce/internal/domains/cart/application/types"
	cataloghttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/http/mapper"
)

// AddToCart is the body of POST /cart/add.
type AddToCart struct {
	ItemID   string `json:"itemId"`
	Quantity *int   `json:"quantity"`
}

// Line is the HTTP representation of a cart line.
type Line struct {
	ItemID    string                         `json:"itemId"`
	Quantity  int                            `json:"quantity"`
	Price     float64                        `json:"price"`
	LineTotal float64                        `json:"lineTotal"`
	Item      *cataloghttpmapper.ItemSummary `json:"item"`
}

// Cart is the HTTP representation of a cart.
type Cart struct {
	ID        string  `json:"id,omitempty"`
	Lines     []Line  `json:"lines"`
	Subtotal  float64 `json:"subtotal"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// ToAddLineQuantity defaults a missing quantity to one.
func ToAddLineQuantity(payload AddToCart) int {
	if payload.Quantity == nil {
		return 1
	}
	return *payload.Quantity
}

// FromView maps the cart read model.
func FromView(view *carttypes.CartView) Cart {
	if view == nil {
		view = carttypes.EmptyView()
	}
	out := Cart{
		ID:        view.ID,
		Lines:     make([]Line, 0, len(view.Lines)),
		Subtotal:  cataloghttpmapper.Money(view.Subtotal),
		Total:     cataloghttpmapper.Money(view.Total),
		ItemCount: view.ItemCount,
	}
	for _, line := range view.Lines {
		out.Lines = append(out.Lines, Line{
			ItemID:    line.Line.ItemID,
			Quantity:  line.Line.Quantity,
			Price:     cataloghttpmapper.Money(line.Line.Price),
			LineTotal: cataloghttpmapper.Money(line.LineTotal),
			Item:      cataloghttpmapper.FromSummary(line.Item),
		})
	}
	return out
}
