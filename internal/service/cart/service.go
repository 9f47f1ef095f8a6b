// Package cart keeps one cart per session. Lines are product snapshots merged
// on (product id, option id); totals are recomputed on every read.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

const storeName = "cart"

type Service struct {
	mu     sync.Mutex
	store  *snapshot.Adapter
	logger *zap.Logger
	carts  map[string][]domain.CartItem
}

func New(store *snapshot.Adapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		carts:  make(map[string][]domain.CartItem),
	}
}

// Items returns a copy of the session's cart lines.
func (s *Service) Items(ctx context.Context, sessionID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.load(ctx, sessionID))
}

// Add merges the product into the cart. A non-positive quantity counts as one.
// Stock is not checked here.
func (s *Service) Add(ctx context.Context, sessionID string, product domain.Product, optionID string, quantity int) ([]domain.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	var selected *domain.ProductOption
	if optionID != "" {
		opt, ok := product.Option(optionID)
		if !ok {
			return nil, fmt.Errorf("option %q of product %q: %w", optionID, product.ID, domain.ErrNotFound)
		}
		selected = &opt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load(ctx, sessionID)
	merged := false
	for i := range items {
		if items[i].Matches(product.ID, optionID) {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		snap := product.Clone()
		items = append(items, domain.CartItem{Product: snap, Quantity: quantity, SelectedOption: selected})
	}
	s.set(ctx, sessionID, items)
	return domain.CloneItems(items), nil
}

// Remove drops the line identified by (productID, optionID). Missing lines are ignored.
func (s *Service) Remove(ctx context.Context, sessionID, productID, optionID string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.load(ctx, sessionID)
	for i := range items {
		if items[i].Matches(productID, optionID) {
			items = append(items[:i], items[i+1:]...)
			s.set(ctx, sessionID, items)
			break
		}
	}
	return domain.CloneItems(items)
}

func (s *Service) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(ctx, sessionID, []domain.CartItem{})
}

// Total is the sum of unit price times quantity over all lines.
func (s *Service) Total(ctx context.Context, sessionID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SumItems(s.load(ctx, sessionID))
}

// Count is the number of units in the cart.
func (s *Service) Count(ctx context.Context, sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.load(ctx, sessionID) {
		n += it.Quantity
	}
	return n
}

// Forget drops the session's cart from memory and from the backend.
func (s *Service) Forget(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	s.store.Delete(ctx, snapshot.SessionKey(storeName, sessionID))
}

func (s *Service) load(ctx context.Context, sessionID string) []domain.CartItem {
	if items, ok := s.carts[sessionID]; ok {
		return items
	}
	items := snapshot.Load(ctx, s.store, snapshot.SessionKey(storeName, sessionID), []domain.CartItem{})
	s.carts[sessionID] = items
	return items
}

func (s *Service) set(ctx context.Context, sessionID string, items []domain.CartItem) {
	s.carts[sessionID] = items
	s.store.Save(ctx, snapshot.SessionKey(storeName, sessionID), items)
}
