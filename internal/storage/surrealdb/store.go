// Package surrealdb provides a SurrealDB-backed key-value backend.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const table = "kv"

// kvRecord is the row stored per key. Value holds the raw JSON text.
type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store implements interfaces.KVBackend on a SurrealDB table.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// Connect dials SurrealDB, signs in, selects the namespace and database and
// makes sure the kv table exists.
func Connect(ctx context.Context, logger *common.Logger, config common.SurrealDBConfig) (*Store, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB backend connected")

	return store, nil
}

// NewStore wraps an already selected connection.
func NewStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	// SurrealDB v3 errors on querying tables that do not exist
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", table, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	rec, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID(table, key))
	if err != nil {
		return nil, fmt.Errorf("failed to select key '%s': %w", key, err)
	}
	if rec == nil {
		return nil, models.ErrKeyNotFound
	}
	return []byte(rec.Value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	sql := "UPSERT type::record('kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kvRecord{Key: key, Value: string(value)}}

	err := retry.Do(
		func() error {
			_, err := surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars)
			return err
		},
		retry.Attempts(3),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug().Str("key", key).Uint("attempt", n+1).Err(err).Msg("Retrying SurrealDB upsert")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to set key '%s' after retries: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := surrealdb.Delete[kvRecord](ctx, s.db, surrealmodels.NewRecordID(table, key)); err != nil {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}
	return nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

var _ interfaces.KVBackend = (*Store)(nil)
