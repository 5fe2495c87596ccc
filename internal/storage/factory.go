package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/storage/badger"
	"github.com/bobmcallan/advisor/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendBadger    = "badger"
	BackendSurrealDB = "surrealdb"
)

// NewBackend creates the key-value backend selected by the configuration.
// Supported backends: "file" (default), "memory", "badger", "surrealdb".
func NewBackend(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.KVBackend, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		return NewFileBackend(logger, config.File.Path)

	case BackendMemory:
		return NewMemoryBackend(logger), nil

	case BackendBadger:
		return badger.NewStore(logger, config.Badger.Path)

	case BackendSurrealDB:
		return surrealdb.Connect(ctx, logger, config.SurrealDB)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, memory, badger, surrealdb)", backend)
	}
}
