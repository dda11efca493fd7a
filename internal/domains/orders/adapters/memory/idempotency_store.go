package memory

import (
	"context"

	"github.com/Apurer/go-gin-commerce/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce/internal/platform/memdb"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore reads the keys Repository.Place reserves in the shared memdb tables.
type IdempotencyStore struct {
	db *memdb.DB
}

// NewIdempotencyStore reads keys from db.
func NewIdempotencyStore(db *memdb.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	var found *ports.IdempotencyRecord
	err := s.db.Read(func(t *memdb.Tables) error {
		if record, ok := t.IdempotencyKeys[key]; ok {
			found = &record
		}
		return nil
	})
	return found, err
}
