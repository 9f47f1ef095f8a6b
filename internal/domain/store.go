package domain

import "time"

// StoreConfig is the process-wide storefront configuration edited by admins.
type StoreConfig struct {
	Name               string `json:"name" yaml:"name"`
	IconURL            string `json:"iconUrl,omitempty" yaml:"iconUrl"`
	PaymentPhoneNumber string `json:"paymentPhoneNumber,omitempty" yaml:"paymentPhoneNumber"`
	FacebookURL        string `json:"facebookUrl,omitempty" yaml:"facebookUrl"`
	WhatsappNumber     string `json:"whatsappNumber,omitempty" yaml:"whatsappNumber"`
}

// Session is the server-side stand-in for one browser: it owns a cart, a
// wishlist, the current user and the language preference.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
