// Package settings holds the admin-editable store configuration.
package settings

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

// MaxIconBytes bounds uploaded store icons.
const MaxIconBytes = 512 << 10

type Service struct {
	mu     sync.Mutex
	store  *snapshot.Adapter
	logger *zap.Logger
	config domain.StoreConfig
}

func New(ctx context.Context, store *snapshot.Adapter, def domain.StoreConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		config: snapshot.Load(ctx, store, snapshot.KeyStoreConfig, def),
	}
}

func (s *Service) Get() domain.StoreConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Update replaces the configuration wholesale.
func (s *Service) Update(ctx context.Context, in domain.StoreConfig) (domain.StoreConfig, error) {
	cfg := domain.StoreConfig{
		Name:               strings.TrimSpace(in.Name),
		IconURL:            strings.TrimSpace(in.IconURL),
		PaymentPhoneNumber: strings.TrimSpace(in.PaymentPhoneNumber),
		FacebookURL:        strings.TrimSpace(in.FacebookURL),
		WhatsappNumber:     strings.TrimSpace(in.WhatsappNumber),
	}
	if cfg.Name == "" {
		return domain.StoreConfig{}, fmt.Errorf("store name required: %w", domain.ErrValidation)
	}
	if cfg.FacebookURL != "" {
		if u, err := url.Parse(cfg.FacebookURL); err != nil || u.Host == "" {
			return domain.StoreConfig{}, fmt.Errorf("facebook url %q: %w", cfg.FacebookURL, domain.ErrValidation)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.persist(ctx)
	return cfg, nil
}

// SetIcon stores an uploaded image as a data URI. Only images up to
// MaxIconBytes are accepted.
func (s *Service) SetIcon(ctx context.Context, data []byte) (domain.StoreConfig, error) {
	if len(data) == 0 {
		return domain.StoreConfig{}, fmt.Errorf("empty icon: %w", domain.ErrValidation)
	}
	if len(data) > MaxIconBytes {
		return domain.StoreConfig{}, fmt.Errorf("icon is %d bytes, limit %d: %w", len(data), MaxIconBytes, domain.ErrValidation)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return domain.StoreConfig{}, fmt.Errorf("icon type %s: %w", mt.String(), domain.ErrValidation)
	}
	uri := "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.IconURL = uri
	s.persist(ctx)
	s.logger.Info("store icon updated", zap.String("mime", mt.String()), zap.Int("bytes", len(data)))
	return s.config, nil
}

func (s *Service) persist(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyStoreConfig, s.config)
}
