package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-commerce/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// ErrInvalidInput signals the request violated an order invariant.
var ErrInvalidInput = errors.New("invalid order input")

// ErrNumberExhausted is returned when every generated order number collided.
var ErrNumberExhausted = errors.New("could not allocate a unique order number")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyLines) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrEmptyItemID) ||
		errors.Is(err, domain.ErrInvalidAddress) ||
		errors.Is(err, domain.ErrMissingPaymentMethod) ||
		errors.Is(err, identity.ErrAmbiguous) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
