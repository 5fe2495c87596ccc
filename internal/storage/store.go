package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/metrics"
	"github.com/bobmcallan/advisor/internal/models"
)

// Store is the key-value store adapter: JSON values under named keys over a
// KVBackend. Malformed values read as empty and are never surfaced as errors;
// backend failures are wrapped in models.ErrPersistence.
type Store struct {
	backend interfaces.KVBackend
	logger  *common.Logger
	metrics metrics.Recorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store over backend.
func NewStore(backend interfaces.KVBackend, logger *common.Logger, recorder metrics.Recorder) *Store {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		metrics: recorder,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Lock acquires the exclusive section for key and returns its release func.
func (s *Store) Lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// readRaw returns the stored bytes, or nil when the key is absent or empty.
func (s *Store) readRaw(ctx context.Context, key string) ([]byte, error) {
	s.metrics.RecordStoreRead(key)
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			return nil, nil
		}
		s.metrics.RecordStoreFailure(key, "get")
		return nil, fmt.Errorf("%w: failed to read '%s': %w", models.ErrPersistence, key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *Store) writeRaw(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal '%s': %w", key, err)
	}
	s.metrics.RecordStoreWrite(key)
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.metrics.RecordStoreFailure(key, "set")
		return fmt.Errorf("%w: failed to write '%s': %w", models.ErrPersistence, key, err)
	}
	return nil
}

func (s *Store) malformed(key string, err error) {
	s.metrics.RecordParseFailure(key)
	s.logger.Warn().
		Str("key", key).
		Err(fmt.Errorf("%w: %w", models.ErrMalformedData, err)).
		Msg("Failed to parse stored value, treating as empty")
}

// Remove deletes key from the backend.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.metrics.RecordStoreWrite(key)
	if err := s.backend.Delete(ctx, key); err != nil {
		s.metrics.RecordStoreFailure(key, "delete")
		return fmt.Errorf("%w: failed to delete '%s': %w", models.ErrPersistence, key, err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ReadCollection returns the array stored under key. An absent key, an empty
// value, malformed JSON or a non-array value all read as an empty slice.
func ReadCollection[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	data, err := s.readRaw(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		s.malformed(key, err)
		return []T{}, nil
	}
	if records == nil {
		// JSON null
		return []T{}, nil
	}
	return records, nil
}

// WriteCollection overwrites key with records. A nil slice is stored as [].
func WriteCollection[T any](ctx context.Context, s *Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	return s.writeRaw(ctx, key, records)
}

// ReadRecord returns the object stored under key, or nil when it is absent,
// null or malformed.
func ReadRecord[T any](ctx context.Context, s *Store, key string) (*T, error) {
	data, err := s.readRaw(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}

	var record *T
	if err := json.Unmarshal(data, &record); err != nil {
		s.malformed(key, err)
		return nil, nil
	}
	return record, nil
}

// WriteRecord overwrites key with record. A nil record removes the key.
func WriteRecord[T any](ctx context.Context, s *Store, key string, record *T) error {
	if record == nil {
		return s.Remove(ctx, key)
	}
	return s.writeRaw(ctx, key, record)
}
