package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuestUserID owns orders placed without a logged-in user.
const GuestUserID = "guest"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo implements the forward-only lifecycle:
// Pending -> Completed | Cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderPending && (next == OrderCompleted || next == OrderCancelled)
}

type PaymentMethod string

const (
	PaymentVodafoneCash PaymentMethod = "Vodafone Cash"
	PaymentInstaPay     PaymentMethod = "InstaPay"
	PaymentFawry        PaymentMethod = "Fawry"
	PaymentCreditCard   PaymentMethod = "Credit Card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentVodafoneCash, PaymentInstaPay, PaymentFawry, PaymentCreditCard:
		return true
	}
	return false
}

// RequiresSenderReference is true for wallet transfers, which are matched by
// the sender's number during manual confirmation.
func (m PaymentMethod) RequiresSenderReference() bool {
	return m == PaymentVodafoneCash || m == PaymentInstaPay
}

// Order line items are snapshots taken at purchase time, never live references.
type Order struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"userId"`
	CustomerName        string          `json:"customerName"`
	CustomerEmail       string          `json:"customerEmail"`
	CustomerPhone       string          `json:"customerPhone"`
	SenderPaymentNumber string          `json:"senderPaymentNumber,omitempty"`
	Items               []CartItem      `json:"items"`
	Total               decimal.Decimal `json:"total"`
	Discount            decimal.Decimal `json:"discount"`
	CouponCode          string          `json:"couponCode,omitempty"`
	Status              OrderStatus     `json:"status"`
	Date                time.Time       `json:"date"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod"`
}

// Clone deep-copies the order.
func (o Order) Clone() Order {
	out := o
	out.Items = CloneItems(o.Items)
	return out
}
