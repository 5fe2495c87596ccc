// Package interfaces defines service contracts for the advisor workspace
package interfaces

import (
	"context"

	"github.com/bobmcallan/advisor/internal/models"
)

// KVBackend is the byte-level key/value store beneath the store adapter.
// Get returns models.ErrKeyNotFound for absent keys; Delete of an absent key
// is not an error.
type KVBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Repository provides whole-collection access to one store key.
type Repository[T any] interface {
	Key() string

	// FetchAll returns the stored collection; absent or malformed values
	// read as an empty collection.
	FetchAll(ctx context.Context) ([]T, error)

	// SaveAll overwrites the stored collection and returns records.
	SaveAll(ctx context.Context, records []T) ([]T, error)

	// Mutate reads the collection, applies fn and saves the result while
	// holding the key's exclusive lock.
	Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error)
}

// RecordStore provides access to a single persisted object.
type RecordStore[T any] interface {
	Key() string
	Load(ctx context.Context) (*T, error) // nil when absent or malformed
	Save(ctx context.Context, record *T) error
	Clear(ctx context.Context) error
}

// StorageManager owns the backend and is the only path to it.
type StorageManager interface {
	Users() Repository[models.User]
	Portfolios() Repository[models.Portfolio]
	Accounts() Repository[models.Account]
	Session() RecordStore[models.Session]

	// Clear resets the users and portfolios collections to empty.
	Clear(ctx context.Context) error

	Close() error
}
