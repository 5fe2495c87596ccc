package storage

import (
	"context"

	"github.com/bobmcallan/advisor/internal/interfaces"
)

// Repository is the whole-collection repository for one store key.
type Repository[T any] struct {
	store *Store
	key   string
}

// NewRepository creates a Repository for key.
func NewRepository[T any](store *Store, key string) *Repository[T] {
	return &Repository[T]{store: store, key: key}
}

func (r *Repository[T]) Key() string {
	return r.key
}

func (r *Repository[T]) FetchAll(ctx context.Context) ([]T, error) {
	return ReadCollection[T](ctx, r.store, r.key)
}

// SaveAll overwrites the collection and echoes records back.
func (r *Repository[T]) SaveAll(ctx context.Context, records []T) ([]T, error) {
	if records == nil {
		records = []T{}
	}
	if err := WriteCollection(ctx, r.store, r.key, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Mutate runs read, fn, write under the key's lock so that concurrent
// mutations of the same collection cannot lose each other's writes. When fn
// returns an error nothing is written.
func (r *Repository[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) ([]T, error) {
	unlock := r.store.Lock(r.key)
	defer unlock()

	current, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	return r.SaveAll(ctx, next)
}

// Record persists a single object under one key.
type Record[T any] struct {
	store *Store
	key   string
}

// NewRecord creates a Record for key.
func NewRecord[T any](store *Store, key string) *Record[T] {
	return &Record[T]{store: store, key: key}
}

func (r *Record[T]) Key() string {
	return r.key
}

func (r *Record[T]) Load(ctx context.Context) (*T, error) {
	return ReadRecord[T](ctx, r.store, r.key)
}

func (r *Record[T]) Save(ctx context.Context, record *T) error {
	return WriteRecord(ctx, r.store, r.key, record)
}

func (r *Record[T]) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, r.key)
}

var (
	_ interfaces.Repository[struct{}]  = (*Repository[struct{}])(nil)
	_ interfaces.RecordStore[struct{}] = (*Record[struct{}])(nil)
)
