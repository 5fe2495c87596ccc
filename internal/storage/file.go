// Package storage provides the key-value store adapter, its backends and the
// collection repositories built on top of it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/spf13/afero"
)

// FileBackend stores one JSON file per key on an afero filesystem. Backed by
// the OS filesystem it is the durable store; backed by a MemMapFs it is the
// in-memory fallback.
type FileBackend struct {
	fs     afero.Fs
	dir    string
	logger *common.Logger
}

// NewFileBackend creates a FileBackend rooted at path on the OS filesystem.
func NewFileBackend(logger *common.Logger, path string) (*FileBackend, error) {
	return newFileBackend(afero.NewOsFs(), path, logger)
}

// NewMemoryBackend creates a FileBackend over an in-memory filesystem.
// Nothing it holds survives the process.
func NewMemoryBackend(logger *common.Logger) *FileBackend {
	b, _ := newFileBackend(afero.NewMemMapFs(), "/store", logger)
	return b
}

func newFileBackend(fsys afero.Fs, dir string, logger *common.Logger) (*FileBackend, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	logger.Debug().Str("path", dir).Msg("File backend opened")
	return &FileBackend{fs: fsys, dir: dir, logger: logger}, nil
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path traversal.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (b *FileBackend) filePath(key string) string {
	return filepath.Join(b.dir, sanitizeKey(key)+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.filePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read '%s': %w", key, err)
	}
	return data, nil
}

// Set writes value atomically: temp file in the same directory, then rename.
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	target := b.filePath(key)

	tmpFile, err := afero.TempFile(b.fs, b.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(value); err != nil {
		tmpFile.Close()
		b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := b.fs.Rename(tmpPath, target); err != nil {
		b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	err := b.fs.Remove(b.filePath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete '%s': %w", key, err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

// Compile-time check
var _ interfaces.KVBackend = (*FileBackend)(nil)
