package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

func (t CouponType) Valid() bool {
	return t == CouponPercentage || t == CouponFixed
}

type Coupon struct {
	ID         string          `json:"id" yaml:"id"`
	Code       string          `json:"code" yaml:"code"`
	Type       CouponType      `json:"type" yaml:"type"`
	Value      decimal.Decimal `json:"value" yaml:"value"`
	UsageLimit int             `json:"usageLimit" yaml:"usageLimit"`
	UsageCount int             `json:"usageCount" yaml:"usageCount"`
	IsActive   bool            `json:"isActive" yaml:"isActive"`
}

// MatchesCode compares codes case-insensitively.
func (c Coupon) MatchesCode(code string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Code), strings.TrimSpace(code))
}

// Exhausted reports whether every usage slot has been consumed.
func (c Coupon) Exhausted() bool {
	return c.UsageCount >= c.UsageLimit
}

// Discount computes the raw discount for a subtotal. The result is not capped;
// callers clamp the payable total with FinalTotal.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if c.Type == CouponFixed {
		return c.Value
	}
	return RoundCurrency(subtotal.Mul(c.Value).Div(decimal.NewFromInt(100)))
}
