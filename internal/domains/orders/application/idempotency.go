package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	ordertypes "github.com/Apurer/go-gin-commerce/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

type normalizedPlaceOrder struct {
	Owner           string             `json:"owner"`
	Lines           []normalizedLine   `json:"lines"`
	ShippingAddress normalizedAddress  `json:"shippingAddress"`
	BillingAddress  *normalizedAddress `json:"billingAddress,omitempty"`
	PaymentMethod   string             `json:"paymentMethod"`
	CouponCode      string             `json:"couponCode,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

type normalizedLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type normalizedAddress struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// FingerprintPlaceOrder builds a deterministic hash of the checkout request (excluding the idempotency key).
// Line order is significant because it determines the order lines.
func FingerprintPlaceOrder(input ordertypes.PlaceOrderInput) (string, error) {
	normalized := normalizedPlaceOrder{
		Owner:           input.Owner.Key(),
		Lines:           make([]normalizedLine, 0, len(input.Lines)),
		ShippingAddress: normalizeAddress(input.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		CouponCode:      pricing.NormalizeCode(input.CouponCode),
		Notes:           strings.TrimSpace(input.Notes),
	}
	for _, line := range input.Lines {
		normalized.Lines = append(normalized.Lines, normalizedLine{ItemID: strings.TrimSpace(line.ItemID), Quantity: line.Quantity})
	}
	if input.BillingAddress != nil {
		billing := normalizeAddress(*input.BillingAddress)
		normalized.BillingAddress = &billing
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeAddress(a domain.Address) normalizedAddress {
	return normalizedAddress{
		FullName:   strings.TrimSpace(a.FullName),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// idempotencyScope namespaces a client key by its owner so two callers may reuse the
// same key. A blank key disables replay.
func idempotencyScope(owner identity.Identity, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return owner.Key() + "|" + key
}
