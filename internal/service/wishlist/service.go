// Package wishlist keeps a per-session set of product snapshots.
package wishlist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

const storeName = "wishlist"

type Service struct {
	mu     sync.Mutex
	store  *snapshot.Adapter
	logger *zap.Logger
	lists  map[string][]domain.Product
}

func New(store *snapshot.Adapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, lists: make(map[string][]domain.Product)}
}

// Toggle adds the product when absent and removes it when present, keyed by
// product id only. It reports whether the product is now wishlisted.
func (s *Service) Toggle(ctx context.Context, sessionID string, product domain.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load(ctx, sessionID)
	for i, p := range list {
		if p.ID == product.ID {
			list = append(list[:i], list[i+1:]...)
			s.set(ctx, sessionID, list)
			return false
		}
	}
	list = append(list, product.Clone())
	s.set(ctx, sessionID, list)
	return true
}

func (s *Service) Contains(ctx context.Context, sessionID, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.load(ctx, sessionID) {
		if p.ID == productID {
			return true
		}
	}
	return false
}

func (s *Service) List(ctx context.Context, sessionID string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load(ctx, sessionID)
	out := make([]domain.Product, len(list))
	for i, p := range list {
		out[i] = p.Clone()
	}
	return out
}

// Forget drops the session's list from memory and from the backend.
func (s *Service) Forget(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, sessionID)
	s.store.Delete(ctx, snapshot.SessionKey(storeName, sessionID))
}

func (s *Service) load(ctx context.Context, sessionID string) []domain.Product {
	if list, ok := s.lists[sessionID]; ok {
		return list
	}
	list := snapshot.Load(ctx, s.store, snapshot.SessionKey(storeName, sessionID), []domain.Product{})
	s.lists[sessionID] = list
	return list
}

func (s *Service) set(ctx context.Context, sessionID string, list []domain.Product) {
	s.lists[sessionID] = list
	s.store.Save(ctx, snapshot.SessionKey(storeName, sessionID), list)
}
