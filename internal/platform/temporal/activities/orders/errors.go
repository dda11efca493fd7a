package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	ordersapp "github.com/Apurer/go-gin-commerce/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeItemNotFound        = "ItemNotFound"
	ErrTypeItemUnavailable     = "ItemUnavailable"
	ErrTypeInsufficientStock   = "InsufficientStock"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
	ErrTypeOrderNotFound       = "OrderNotFound"
)

// EncodeError converts business rejections into non-retryable application errors.
// Anything else is returned unchanged so Temporal retries it.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	var stockErr *catalogdomain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, nil, *stockErr)
	case errors.Is(err, catalogdomain.ErrItemNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeItemNotFound, nil)
	case errors.Is(err, catalogdomain.ErrItemUnavailable):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeItemUnavailable, nil)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, nil)
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, nil)
	case errors.Is(err, orderports.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeOrderNotFound, nil)
	default:
		return err
	}
}

// DecodeError restores the domain error behind an application error returned by a
// workflow run. Errors of unknown type are returned unchanged.
func DecodeError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	msg := appErr.Message()
	switch appErr.Type() {
	case ErrTypeInsufficientStock:
		var stockErr catalogdomain.InsufficientStockError
		if appErr.HasDetails() && appErr.Details(&stockErr) == nil {
			return &stockErr
		}
		return &remoteError{msg: msg, kind: catalogdomain.ErrInsufficientStock}
	case ErrTypeItemNotFound:
		return &remoteError{msg: msg, kind: catalogdomain.ErrItemNotFound}
	case ErrTypeItemUnavailable:
		return &remoteError{msg: msg, kind: catalogdomain.ErrItemUnavailable}
	case ErrTypeInvalidInput:
		return &remoteError{msg: msg, kind: ordersapp.ErrInvalidInput}
	case ErrTypeIdempotencyConflict:
		return &remoteError{msg: msg, kind: orderports.ErrIdempotencyConflict}
	case ErrTypeOrderNotFound:
		return &remoteError{msg: msg, kind: orderports.ErrNotFound}
	default:
		return err
	}
}

// remoteError keeps the original message while matching the domain sentinel.
type remoteError struct {
	msg  string
	kind error
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.kind }
