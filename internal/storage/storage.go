// Package storage opens the snapshot backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
	"storefront/internal/repository/snapshot"
)

// Open returns the configured backend and a func releasing its resources.
// The postgres backend is migrated before use.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (snapshot.Repository, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return snapshot.NewMemory(), func() {}, nil
	case config.StorageFile:
		repo, err := snapshot.NewFile(cfg.StorageDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return repo, func() {}, nil
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return snapshot.NewPostgres(pool, logger), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
