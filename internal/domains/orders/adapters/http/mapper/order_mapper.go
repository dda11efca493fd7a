package mapper

import (
	"time"

	cataloghttpmapper "github.com/Apurer/go-gin-commerce/internal/domains/catalog/adapters/http/mapper"
	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// Address is the wire shape of shipping and billing addresses.
type Address struct {
	FullName   string `json:"fullName,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// LineRequest is one requested item in POST /orders.
type LineRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CreateOrder is the body of POST /orders.
type CreateOrder struct {
	Items           []LineRequest `json:"items"`
	ShippingAddress *Address      `json:"shippingAddress"`
	BillingAddress  *Address      `json:"billingAddress,omitempty"`
	PaymentMethod   string        `json:"paymentMethod"`
	CouponCode      string        `json:"couponCode,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// Line is the HTTP representation of an order line.
type Line struct {
	ItemID   string                         `json:"itemId"`
	Quantity int                            `json:"quantity"`
	Price    float64                        `json:"price"`
	Total    float64                        `json:"total"`
	Item     *cataloghttpmapper.ItemSummary `json:"item"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID              string    `json:"id"`
	OrderNumber     string    `json:"orderNumber"`
	UserID          string    `json:"userId,omitempty"`
	Status          string    `json:"status"`
	Subtotal        float64   `json:"subtotal"`
	Discount        float64   `json:"discount"`
	Tax             float64   `json:"tax"`
	Shipping        float64   `json:"shipping"`
	Total           float64   `json:"total"`
	ShippingAddress Address   `json:"shippingAddress"`
	BillingAddress  *Address  `json:"billingAddress,omitempty"`
	PaymentMethod   string    `json:"paymentMethod"`
	CouponCode      string    `json:"couponCode,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Items           []Line    `json:"items"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OrderEnvelope wraps an order as {"order": ...}.
type OrderEnvelope struct {
	Order Order `json:"order"`
}

// ToPlaceOrderInput converts the request body into the checkout command.
func ToPlaceOrderInput(payload CreateOrder, owner identity.Identity, idempotencyKey string) ordertypes.PlaceOrderInput {
	input := ordertypes.PlaceOrderInput{
		Owner:          owner,
		Lines:          make([]ordertypes.LineInput, 0, len(payload.Items)),
		PaymentMethod:  payload.PaymentMethod,
		CouponCode:     payload.CouponCode,
		Notes:          payload.Notes,
		IdempotencyKey: idempotencyKey,
	}
	for _, item := range payload.Items {
		input.Lines = append(input.Lines, ordertypes.LineInput{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	if payload.ShippingAddress != nil {
		input.ShippingAddress = toDomainAddress(*payload.ShippingAddress)
	}
	if payload.BillingAddress != nil {
		billing := toDomainAddress(*payload.BillingAddress)
		input.BillingAddress = &billing
	}
	return input
}

// FromDomain maps a hydrated order.
func FromDomain(order *domain.Order) OrderEnvelope {
	if order == nil {
		return OrderEnvelope{}
	}
	out := Order{
		ID:              order.ID,
		OrderNumber:     order.Number,
		UserID:          order.UserID,
		Status:          string(order.Status),
		Subtotal:        cataloghttpmapper.Money(order.Subtotal),
		Discount:        cataloghttpmapper.Money(order.Discount),
		Tax:             cataloghttpmapper.Money(order.Tax),
		Shipping:        cataloghttpmapper.Money(order.Shipping),
		Total:           cataloghttpmapper.Money(order.Total),
		ShippingAddress: fromDomainAddress(order.ShippingAddress),
		PaymentMethod:   order.PaymentMethod,
		CouponCode:      order.CouponCode,
		Notes:           order.Notes,
		Items:           make([]Line, 0, len(order.Lines)),
		CreatedAt:       order.CreatedAt,
	}
	if order.BillingAddress != nil {
		billing := fromDomainAddress(*order.BillingAddress)
		out.BillingAddress = &billing
	}
	for _, line := range order.Lines {
		out.Items = append(out.Items, Line{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Price:    cataloghttpmapper.Money(line.Price),
			Total:    cataloghttpmapper.Money(line.Total),
			Item:     cataloghttpmapper.FromSummary(line.Item),
		})
	}
	return OrderEnvelope{Order: out}
}

func toDomainAddress(a Address) domain.Address {
	return domain.Address(a)
}

func fromDomainAddress(a domain.Address) Address {
	return Address(a)
}
