// Package order is the append-mostly order ledger plus the admin dashboard
// aggregates computed from it.
package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

// Status guards accepted by ORDER_STATUS_GUARD.
const (
	GuardStrict  = "strict"
	GuardLenient = "lenient"
)

// PlaceInput carries everything checkout knows about a new order.
type PlaceInput struct {
	UserID              string
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	SenderPaymentNumber string
	Items               []domain.CartItem
	Total               decimal.Decimal
	Discount            decimal.Decimal
	CouponCode          string
	PaymentMethod       domain.PaymentMethod
}

type Service struct {
	mu      sync.Mutex
	store   *snapshot.Adapter
	logger  *zap.Logger
	orders  []domain.Order
	lenient bool
	now     func() time.Time
	newID   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, e.g. in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStatusGuard selects strict (forward-only) or lenient transitions.
func WithStatusGuard(guard string) Option {
	return func(s *Service) { s.lenient = strings.EqualFold(guard, GuardLenient) }
}

func New(ctx context.Context, store *snapshot.Adapter, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		logger: logger,
		orders: snapshot.Load(ctx, store, snapshot.KeyOrders, []domain.Order{}),
		now:    time.Now,
		newID: func() string {
			return "ORD-" + ulid.Make().String()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place records a Pending order at the head of the ledger.
func (s *Service) Place(ctx context.Context, in PlaceInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	if !in.PaymentMethod.Valid() {
		return domain.Order{}, fmt.Errorf("payment method %q: %w", in.PaymentMethod, domain.ErrValidation)
	}
	userID := in.UserID
	if userID == "" {
		userID = domain.GuestUserID
	}
	o := domain.Order{
		ID:                  s.newID(),
		UserID:              userID,
		CustomerName:        strings.TrimSpace(in.CustomerName),
		CustomerEmail:       strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		CustomerPhone:       strings.TrimSpace(in.CustomerPhone),
		SenderPaymentNumber: strings.TrimSpace(in.SenderPaymentNumber),
		Items:               domain.CloneItems(in.Items),
		Total:               in.Total,
		Discount:            in.Discount,
		CouponCode:          in.CouponCode,
		Status:              domain.OrderPending,
		Date:                s.now(),
		PaymentMethod:       in.PaymentMethod,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]domain.Order{o}, s.orders...)
	s.persist(ctx)
	s.logger.Info("order placed",
		zap.String("id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("total", o.Total.String()),
		zap.String("payment_method", string(o.PaymentMethod)),
	)
	return o.Clone(), nil
}

// UpdateStatus moves an order to a new status. Re-applying the current status
// is a no-op; otherwise the strict guard only allows Pending to Completed or
// Cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("status %q: %w", status, domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	current := s.orders[idx].Status
	if current == status {
		return s.orders[idx].Clone(), nil
	}
	if !s.lenient && !current.CanTransitionTo(status) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", current, status, domain.ErrInvalidTransition)
	}
	s.orders[idx].Status = status
	s.persist(ctx)
	s.logger.Info("order status updated", zap.String("id", id), zap.String("from", string(current)), zap.String("to", string(status)))
	return s.orders[idx].Clone(), nil
}

// Delete hard-removes an order. Unknown ids are ignored.
func (s *Service) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return
	}
	s.orders = append(s.orders[:idx], s.orders[idx+1:]...)
	s.persist(ctx)
	s.logger.Info("order deleted", zap.String("id", id))
}

// List returns all orders, most recent first.
func (s *Service) List() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.orders)
}

func (s *Service) Get(id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.index(id)
	if idx < 0 {
		return domain.Order{}, domain.ErrNotFound
	}
	return s.orders[idx].Clone(), nil
}

func (s *Service) ListByUser(userID string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Recent returns the n most recent orders.
func (s *Service) Recent(n int) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.orders) {
		n = len(s.orders)
	}
	if n < 0 {
		n = 0
	}
	return cloneOrders(s.orders[:n])
}

func (s *Service) index(id string) int {
	for i, o := range s.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyOrders, s.orders)
}

func cloneOrders(in []domain.Order) []domain.Order {
	out := make([]domain.Order, len(in))
	for i, o := range in {
		out[i] = o.Clone()
	}
	return out
}
