package httpserver

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/i18n"
	"storefront/internal/service/assistant"
	"storefront/internal/service/checkout"
	"storefront/internal/service/coupon"
	"storefront/internal/service/customer"
	"storefront/internal/service/order"
)

type SessionService interface {
	Issue(ctx context.Context, language string) (domain.Session, error)
	Lookup(ctx context.Context, token string) (domain.Session, error)
	SetUser(ctx context.Context, token, userID string) (domain.Session, error)
	ClearUser(ctx context.Context, token string) (domain.Session, error)
	SetLanguage(ctx context.Context, token, language string) (domain.Session, error)
	TTLSeconds() int
}

type CatalogService interface {
	Products() []domain.Product
	Product(id string) (domain.Product, error)
	Search(term, category, lang string) []domain.Product
	CreateProduct(ctx context.Context, in domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, in domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string)
	SetStock(ctx context.Context, id string, inStock bool) (domain.Product, error)
	Categories() []domain.Category
	CreateCategory(ctx context.Context, in domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, in domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string)
}

type CartService interface {
	Items(ctx context.Context, sessionID string) []domain.CartItem
	Add(ctx context.Context, sessionID string, product domain.Product, optionID string, quantity int) ([]domain.CartItem, error)
	Remove(ctx context.Context, sessionID, productID, optionID string) []domain.CartItem
	Clear(ctx context.Context, sessionID string)
	Total(ctx context.Context, sessionID string) decimal.Decimal
	Count(ctx context.Context, sessionID string) int
}

type WishlistService interface {
	Toggle(ctx context.Context, sessionID string, product domain.Product) bool
	Contains(ctx context.Context, sessionID, productID string) bool
	List(ctx context.Context, sessionID string) []domain.Product
}

type CheckoutService interface {
	ApplyCoupon(ctx context.Context, sessionID, code string) (coupon.Quote, error)
	Checkout(ctx context.Context, sess domain.Session, in checkout.Input) (domain.Order, error)
}

type CustomerService interface {
	Register(ctx context.Context, in customer.RegisterInput) (domain.User, error)
	Login(email, password string) (domain.User, error)
	Get(id string) (domain.User, error)
	List() []domain.User
	Delete(ctx context.Context, id string) error
}

type OrderService interface {
	List() []domain.Order
	Get(id string) (domain.Order, error)
	ListByUser(userID string) []domain.Order
	Recent(n int) []domain.Order
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
	Delete(ctx context.Context, id string)
	Metrics(window order.Window) order.Metrics
	DailyRevenue(days int) []order.DailyPoint
}

type CouponService interface {
	List() []domain.Coupon
	Create(ctx context.Context, in domain.Coupon) (domain.Coupon, error)
	Update(ctx context.Context, in domain.Coupon) (domain.Coupon, error)
	Delete(ctx context.Context, id string)
}

type SettingsService interface {
	Get() domain.StoreConfig
	Update(ctx context.Context, in domain.StoreConfig) (domain.StoreConfig, error)
	SetIcon(ctx context.Context, data []byte) (domain.StoreConfig, error)
}

type AssistantService interface {
	Open(sessionID, lang string) []assistant.Message
	History(sessionID string) []assistant.Message
	Send(ctx context.Context, sessionID, text, lang string) (assistant.Message, error)
	Close(sessionID string)
}

// Pinger reports whether the snapshot backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the services the router dispatches to.
type Deps struct {
	Sessions  SessionService
	Catalog   CatalogService
	Cart      CartService
	Wishlist  WishlistService
	Checkout  CheckoutService
	Customers CustomerService
	Orders    OrderService
	Coupons   CouponService
	Settings  SettingsService
	Assistant AssistantService
	Messages  *i18n.Bundle
	// Ready is optional; memory backends are always ready.
	Ready       Pinger
	CORSOrigins []string
}
