// Package coupon validates discount codes and tracks their usage.
package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

// Quote is the outcome of applying a coupon to a subtotal. Discount is the
// amount that actually reduces the subtotal, so Subtotal-Discount == Total.
type Quote struct {
	Coupon   domain.Coupon   `json:"coupon"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

type Service struct {
	mu      sync.Mutex
	store   *snapshot.Adapter
	logger  *zap.Logger
	coupons []domain.Coupon
	newID   func() string
}

func New(ctx context.Context, store *snapshot.Adapter, defaults []domain.Coupon, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		logger:  logger,
		coupons: snapshot.Load(ctx, store, snapshot.KeyCoupons, append([]domain.Coupon(nil), defaults...)),
		newID: func() string {
			return "cpn-" + uuid.NewString()
		},
	}
}

// Apply finds an active coupon by code and prices the subtotal with it.
// An unknown or inactive code is ErrCouponInvalid; a matching coupon whose
// usage reached its limit is ErrCouponExhausted. Usage is not consumed.
func (s *Service) Apply(code string, subtotal decimal.Decimal) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(code)
	if err != nil {
		return Quote{}, err
	}
	return quote(c, subtotal), nil
}

// Redeem re-validates the code and consumes one usage slot. It is called once
// per placed order.
func (s *Service) Redeem(ctx context.Context, code string) (domain.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(code)
	if err != nil {
		return domain.Coupon{}, err
	}
	idx := s.index(c.ID)
	s.coupons[idx].UsageCount++
	s.persist(ctx)
	s.logger.Info("coupon redeemed",
		zap.String("code", c.Code),
		zap.Int("usage_count", s.coupons[idx].UsageCount),
		zap.Int("usage_limit", c.UsageLimit),
	)
	return s.coupons[idx], nil
}

func (s *Service) List() []domain.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Coupon(nil), s.coupons...)
}

func (s *Service) Get(id string) (domain.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return domain.Coupon{}, domain.ErrNotFound
	}
	return s.coupons[idx], nil
}

func (s *Service) Create(ctx context.Context, in domain.Coupon) (domain.Coupon, error) {
	c, err := normalize(in)
	if err != nil {
		return domain.Coupon{}, err
	}
	c.ID = s.newID()
	c.UsageCount = 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coupons {
		if existing.MatchesCode(c.Code) {
			return domain.Coupon{}, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrAlreadyExists)
		}
	}
	s.coupons = append(s.coupons, c)
	s.persist(ctx)
	return c, nil
}

// Update replaces a coupon's definition. The usage counter is monotonic and
// cannot be lowered through Update.
func (s *Service) Update(ctx context.Context, in domain.Coupon) (domain.Coupon, error) {
	c, err := normalize(in)
	if err != nil {
		return domain.Coupon{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(in.ID)
	if idx < 0 {
		return domain.Coupon{}, domain.ErrNotFound
	}
	for i, existing := range s.coupons {
		if i != idx && existing.MatchesCode(c.Code) {
			return domain.Coupon{}, fmt.Errorf("coupon %q: %w", c.Code, domain.ErrAlreadyExists)
		}
	}
	if c.UsageCount < s.coupons[idx].UsageCount {
		c.UsageCount = s.coupons[idx].UsageCount
	}
	s.coupons[idx] = c
	s.persist(ctx)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return
	}
	s.coupons = append(s.coupons[:idx], s.coupons[idx+1:]...)
	s.persist(ctx)
}

func (s *Service) lookup(code string) (domain.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Coupon{}, domain.ErrCouponInvalid
	}
	for _, c := range s.coupons {
		if c.IsActive && c.MatchesCode(code) {
			if c.Exhausted() {
				return domain.Coupon{}, domain.ErrCouponExhausted
			}
			return c, nil
		}
	}
	return domain.Coupon{}, domain.ErrCouponInvalid
}

func (s *Service) index(id string) int {
	for i, c := range s.coupons {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyCoupons, s.coupons)
}

func quote(c domain.Coupon, subtotal decimal.Decimal) Quote {
	discount := c.Discount(subtotal)
	return Quote{
		Coupon:   c,
		Subtotal: subtotal,
		Discount: domain.AppliedDiscount(subtotal, discount),
		Total:    domain.FinalTotal(subtotal, discount),
	}
}

func normalize(in domain.Coupon) (domain.Coupon, error) {
	c := in
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return domain.Coupon{}, fmt.Errorf("coupon code required: %w", domain.ErrValidation)
	}
	if !c.Type.Valid() {
		return domain.Coupon{}, fmt.Errorf("coupon type %q: %w", c.Type, domain.ErrValidation)
	}
	if !c.Value.IsPositive() {
		return domain.Coupon{}, fmt.Errorf("coupon value must be positive: %w", domain.ErrValidation)
	}
	if c.Type == domain.CouponPercentage && c.Value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Coupon{}, fmt.Errorf("percentage above 100: %w", domain.ErrValidation)
	}
	if c.UsageLimit < 0 {
		return domain.Coupon{}, fmt.Errorf("usage limit must not be negative: %w", domain.ErrValidation)
	}
	return c, nil
}
