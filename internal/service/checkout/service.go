// Package checkout turns a session's cart into an order. It is the only place
// where an order is recorded, the cart cleared and coupon usage consumed.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/coupon"
	"storefront/internal/service/order"
)

// Stock policies accepted by STOCK_POLICY.
const (
	StockAllow = "allow"
	StockBlock = "block"
)

type cartStore interface {
	Items(ctx context.Context, sessionID string) []domain.CartItem
	Clear(ctx context.Context, sessionID string)
}

type couponEngine interface {
	Apply(code string, subtotal decimal.Decimal) (coupon.Quote, error)
	Redeem(ctx context.Context, code string) (domain.Coupon, error)
}

type orderLedger interface {
	Place(ctx context.Context, in order.PlaceInput) (domain.Order, error)
}

type productReader interface {
	Product(id string) (domain.Product, error)
}

type userReader interface {
	Get(id string) (domain.User, error)
}

// Input is the payment step of the checkout form. Contact fields are used
// only when the session has no logged-in user or the user record lacks them.
type Input struct {
	PaymentMethod       domain.PaymentMethod `json:"paymentMethod"`
	SenderPaymentNumber string               `json:"senderPaymentNumber"`
	CouponCode          string               `json:"couponCode"`
	Name                string               `json:"name"`
	Email               string               `json:"email"`
	Phone               string               `json:"phone"`
}

type Config struct {
	Delay       time.Duration
	StockPolicy string
	AllowGuest  bool
}

type Service struct {
	cart     cartStore
	coupons  couponEngine
	orders   orderLedger
	products productReader
	users    userReader
	cfg      Config
	logger   *zap.Logger
	wait     func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(cart cartStore, coupons couponEngine, orders orderLedger, products productReader, users userReader, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cart:     cart,
		coupons:  coupons,
		orders:   orders,
		products: products,
		users:    users,
		cfg:      cfg,
		logger:   logger,
		wait:     sleep,
		inFlight: make(map[string]struct{}),
	}
}

// ApplyCoupon prices the session's cart with a coupon without consuming it.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (coupon.Quote, error) {
	subtotal := domain.SumItems(s.cart.Items(ctx, sessionID))
	return s.coupons.Apply(code, subtotal)
}

// Checkout validates the payment step, waits for the simulated processing
// delay and then commits: the order is recorded, the coupon usage consumed and
// the cart cleared. A second checkout for the same session while one is in
// flight fails with ErrCheckoutInProgress.
func (s *Service) Checkout(ctx context.Context, sess domain.Session, in Input) (domain.Order, error) {
	if !s.acquire(sess.ID) {
		return domain.Order{}, domain.ErrCheckoutInProgress
	}
	defer s.release(sess.ID)

	if !in.PaymentMethod.Valid() {
		return domain.Order{}, fmt.Errorf("payment method %q: %w", in.PaymentMethod, domain.ErrValidation)
	}
	sender := strings.TrimSpace(in.SenderPaymentNumber)
	if in.PaymentMethod.RequiresSenderReference() && sender == "" {
		return domain.Order{}, domain.ErrSenderRequired
	}

	placed := order.PlaceInput{
		SenderPaymentNumber: sender,
		PaymentMethod:       in.PaymentMethod,
	}
	if err := s.fillCustomer(sess, in, &placed); err != nil {
		return domain.Order{}, err
	}

	items := s.cart.Items(ctx, sess.ID)
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	if err := s.checkStock(items); err != nil {
		return domain.Order{}, err
	}

	subtotal := domain.SumItems(items)
	code := strings.TrimSpace(in.CouponCode)
	if code != "" {
		if _, err := s.coupons.Apply(code, subtotal); err != nil {
			return domain.Order{}, err
		}
	}

	if err := s.wait(ctx, s.cfg.Delay); err != nil {
		return domain.Order{}, err
	}

	placed.Items = items
	placed.Total = subtotal
	placed.Discount = decimal.Zero
	if code != "" {
		redeemed, err := s.coupons.Redeem(ctx, code)
		if err != nil {
			s.logger.Warn("coupon rejected at commit", zap.String("session_prefix", prefix(sess.ID)), zap.String("code", code), zap.Error(err))
			return domain.Order{}, err
		}
		discount := redeemed.Discount(subtotal)
		placed.Discount = domain.AppliedDiscount(subtotal, discount)
		placed.Total = domain.FinalTotal(subtotal, discount)
		placed.CouponCode = redeemed.Code
	}

	o, err := s.orders.Place(ctx, placed)
	if err != nil {
		return domain.Order{}, err
	}
	s.cart.Clear(ctx, sess.ID)
	return o, nil
}

func (s *Service) fillCustomer(sess domain.Session, in Input, out *order.PlaceInput) error {
	out.CustomerName = strings.TrimSpace(in.Name)
	out.CustomerEmail = strings.TrimSpace(in.Email)
	out.CustomerPhone = strings.TrimSpace(in.Phone)

	if sess.UserID == "" {
		if !s.cfg.AllowGuest {
			return domain.ErrLoginRequired
		}
		out.UserID = domain.GuestUserID
		if out.CustomerName == "" {
			out.CustomerName = "Guest"
		}
		return nil
	}

	u, err := s.users.Get(sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrLoginRequired
		}
		return err
	}
	out.UserID = u.ID
	out.CustomerName = firstNonEmpty(u.Name, out.CustomerName)
	out.CustomerEmail = firstNonEmpty(u.Email, out.CustomerEmail)
	out.CustomerPhone = firstNonEmpty(u.Phone, out.CustomerPhone)
	return nil
}

func (s *Service) checkStock(items []domain.CartItem) error {
	if s.cfg.StockPolicy != StockBlock {
		return nil
	}
	for _, it := range items {
		p, err := s.products.Product(it.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// Removed from the catalogue; the cart snapshot decides.
			p = it.Product
		} else if err != nil {
			return err
		}
		if !p.Available() {
			return fmt.Errorf("%s: %w", it.Name, domain.ErrOutOfStock)
		}
	}
	return nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func prefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
