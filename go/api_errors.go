package commerceserver

import (
	"errors"
	"log/slog"

	cartapp "github.com/Apurer/go-gin-commerce/internal/domains/cart/application"
	catalogapp "github.com/Apurer/go-gin-commerce/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-commerce/internal/domains/catalog/domain"
	dashboardapp "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/application"
	ordersapp "github.com/Apurer/go-gin-commerce/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-commerce/internal/shared/errors"
	"github.com/Apurer/go-gin-commerce/internal/shared/identity"
)

// NewResponder builds the problem responder that knows every commerce error.
func NewResponder(logger *slog.Logger) *apierrors.Responder {
	return apierrors.NewResponder("", logger,
		stockProblem,
		validationProblem,
		notFoundProblem,
		unavailableProblem,
		conflictProblem,
	)
}

func stockProblem(err error) (apierrors.ProblemDetail, bool) {
	var stockErr *catalogdomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return apierrors.NewInsufficientStockProblem(stockErr.Error(), stockErr.ItemID, stockErr.Available), true
	}
	if errors.Is(err, catalogdomain.ErrInsufficientStock) {
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func validationProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, cartapp.ErrInvalidInput),
		errors.Is(err, ordersapp.ErrInvalidInput),
		errors.Is(err, dashboardapp.ErrInvalidInput),
		errors.Is(err, identity.ErrMissing),
		errors.Is(err, identity.ErrAmbiguous):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func notFoundProblem(err error) (apierrors.ProblemDetail, bool) {
	var missing *catalogdomain.NotFoundError
	if errors.As(err, &missing) {
		return apierrors.NewNotFoundProblem("item", missing.ItemID), true
	}
	switch {
	case errors.Is(err, catalogdomain.ErrItemNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("order not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func unavailableProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, catalogdomain.ErrItemUnavailable) {
		return apierrors.ErrUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func conflictProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrIdempotencyConflict) {
		return apierrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different request"), true
	}
	return apierrors.ProblemDetail{}, false
}
