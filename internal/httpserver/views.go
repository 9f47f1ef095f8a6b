package httpserver

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/i18n"
)

// productView adds the names shown in the request language.
type productView struct {
	domain.Product
	DisplayName        string `json:"displayName"`
	DisplayDescription string `json:"displayDescription"`
	Available          bool   `json:"available"`
	Wishlisted         bool   `json:"wishlisted"`
}

type categoryView struct {
	domain.Category
	DisplayName string `json:"displayName"`
}

// userView never carries the password hash.
type userView struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Phone string      `json:"phone,omitempty"`
	Role  domain.Role `json:"role"`
}

type cartView struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

type sessionView struct {
	Token     string    `json:"token,omitempty"`
	ExpiresIn int       `json:"expiresIn,omitempty"`
	Language  string    `json:"language"`
	Direction string    `json:"direction"`
	User      *userView `json:"user,omitempty"`
	CartCount int       `json:"cartCount"`
}

func toProductView(p domain.Product, lang string, wishlisted bool) productView {
	return productView{
		Product:            p,
		DisplayName:        p.LocalizedName(lang),
		DisplayDescription: p.LocalizedDescription(lang),
		Available:          p.Available(),
		Wishlisted:         wishlisted,
	}
}

func toCategoryView(c domain.Category, lang string) categoryView {
	return categoryView{Category: c, DisplayName: c.LocalizedName(lang)}
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Phone: u.Phone, Role: u.Role}
}

func toUserViews(users []domain.User) []userView {
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return out
}

func languageView(lang string) (string, string) {
	lang = i18n.Normalize(lang)
	return lang, i18n.Direction(lang)
}

func orEmptyOrders(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
