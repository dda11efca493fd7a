package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-commerce/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// ErrInvalidInput signals the request violated a cart invariant.
var ErrInvalidInput = errors.New("invalid cart input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyItemID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, identity.ErrMissing) ||
		errors.Is(err, identity.ErrAmbiguous) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
