package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
)

// ErrInvalidInput signals the request violated a search or item invariant.
var ErrInvalidInput = errors.New("invalid catalog input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrEmptySlug) ||
		errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrInvalidDiscount) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
