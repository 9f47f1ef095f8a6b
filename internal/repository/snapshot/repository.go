package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// Keys of the process-wide stores. Session-scoped stores use SessionKey.
const (
	KeyProducts    = "products"
	KeyOrders      = "orders"
	KeyUsers       = "users"
	KeyCategories  = "categories"
	KeyCoupons     = "coupons"
	KeyStoreConfig = "store_config"
)

// Repository stores one JSON document per key. Load returns domain.ErrNotFound
// when the key has never been written.
type Repository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionKey namespaces a per-session store, e.g. "cart/<session id>".
func SessionKey(store, sessionID string) string {
	return store + "/" + sessionID
}

// writeTimeout bounds a single backend write once it is detached from the
// caller's context.
const writeTimeout = 5 * time.Second

// Adapter serialises whole stores on top of a Repository. It never fails:
// absent or corrupt documents fall back to defaults and write errors are logged.
type Adapter struct {
	repo   Repository
	logger *zap.Logger
}

func NewAdapter(repo Repository, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{repo: repo, logger: logger}
}

// Repository exposes the underlying backend, e.g. for readiness checks.
func (a *Adapter) Repository() Repository {
	return a.repo
}

// writeContext detaches ctx from its caller. A mutation already applied in
// memory must reach the backend even when the request has been abandoned.
func writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
}

// Save rewrites the document stored under key in full.
func (a *Adapter) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		a.logger.Error("snapshot: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	ctx, cancel := writeContext(ctx)
	defer cancel()
	if err := a.repo.Save(ctx, key, data); err != nil {
		a.logger.Error("snapshot: save failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes the document under key.
func (a *Adapter) Delete(ctx context.Context, key string) {
	ctx, cancel := writeContext(ctx)
	defer cancel()
	if err := a.repo.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.logger.Error("snapshot: delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Load decodes the document under key, returning def when it is absent or
// cannot be decoded. A format change therefore resets the store to its default.
func Load[T any](ctx context.Context, a *Adapter, key string, def T) T {
	data, err := a.repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.Warn("snapshot: load failed, using default", zap.String("key", key), zap.Error(err))
		}
		return def
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		a.logger.Warn("snapshot: corrupt document, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return out
}
