package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type fileRepo struct {
	dir    string
	logger *zap.Logger
}

// NewFile returns a Repository storing one JSON file per key under dir.
// Writes go through a temp file and rename so a crash never leaves a torn document.
func NewFile(dir string, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &fileRepo{dir: dir, logger: logger}, nil
}

func (r *fileRepo) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

func (r *fileRepo) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *fileRepo) Save(_ context.Context, key string, data []byte) error {
	if err := atomic.WriteFile(r.path(key), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot %q: %w", key, err)
	}
	r.logger.Debug("snapshot: file written", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func (r *fileRepo) Delete(_ context.Context, key string) error {
	err := os.Remove(r.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.ErrNotFound
	}
	return err
}

// Ping verifies the snapshot directory is still present.
func (r *fileRepo) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.dir)
	}
	return nil
}
