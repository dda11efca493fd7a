package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrIdempotencyKeyInUse is returned by Repository.Place when another placement
	// already reserved the key. Nothing is written.
	ErrIdempotencyKeyInUse = errors.New("idempotency key already reserved")
)

// IdempotencyRecord captures the association between a client-supplied key and the resulting order.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IdempotencyStore reads the keys that Repository.Place reserves.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
}
