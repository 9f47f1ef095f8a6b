package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponDiscount(t *testing.T) {
	pct := Coupon{Type: CouponPercentage, Value: decimal.NewFromInt(10)}
	assert.True(t, decimal.NewFromInt(20).Equal(pct.Discount(decimal.NewFromInt(200))))
	// 34.5 rounds half away from zero.
	assert.True(t, decimal.NewFromInt(35).Equal(pct.Discount(decimal.NewFromInt(345))))

	fixed := Coupon{Type: CouponFixed, Value: decimal.NewFromInt(100)}
	assert.True(t, decimal.NewFromInt(100).Equal(fixed.Discount(decimal.NewFromInt(40))), "fixed discount is not capped")
}

func TestFinalTotalClampsAtZero(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(FinalTotal(decimal.NewFromInt(40), decimal.NewFromInt(100))))
	assert.True(t, decimal.NewFromInt(180).Equal(FinalTotal(decimal.NewFromInt(200), decimal.NewFromInt(20))))
	assert.True(t, decimal.NewFromInt(40).Equal(AppliedDiscount(decimal.NewFromInt(40), decimal.NewFromInt(100))))
}

func TestCouponMatchesCodeCaseInsensitive(t *testing.T) {
	c := Coupon{Code: "TOKYO2025"}
	assert.True(t, c.MatchesCode("tokyo2025"))
	assert.True(t, c.MatchesCode(" Tokyo2025 "))
	assert.False(t, c.MatchesCode("tokyo"))
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderCompleted, true},
		{OrderPending, OrderCancelled, true},
		{OrderCompleted, OrderPending, false},
		{OrderCancelled, OrderCompleted, false},
		{OrderPending, OrderPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, OrderCompleted.Terminal())
	assert.False(t, OrderStatus("Shipped").Valid())
}

func TestCartItemUnitPrice(t *testing.T) {
	p := Product{ID: "p", BasePrice: decimal.NewFromInt(100)}
	line := CartItem{Product: p, Quantity: 2}
	assert.True(t, decimal.NewFromInt(200).Equal(line.LineTotal()))

	line.SelectedOption = &ProductOption{ID: "o", Price: decimal.NewFromInt(30)}
	assert.True(t, decimal.NewFromInt(60).Equal(line.LineTotal()))
	assert.True(t, line.Matches("p", "o"))
	assert.False(t, line.Matches("p", ""))
}

func TestCloneIsDeep(t *testing.T) {
	p := Product{ID: "p", Options: []ProductOption{{ID: "o", Label: "A"}}, InStock: BoolPtr(true)}
	items := []CartItem{{Product: p, Quantity: 1, SelectedOption: &p.Options[0]}}

	cloned := CloneItems(items)
	items[0].Options[0].Label = "changed"
	*items[0].InStock = false
	items[0].SelectedOption.Label = "changed"

	require.Len(t, cloned, 1)
	assert.Equal(t, "A", cloned[0].Options[0].Label)
	assert.True(t, cloned[0].Available())
	assert.Equal(t, "A", cloned[0].SelectedOption.Label)
}

func TestPaymentMethodSenderReference(t *testing.T) {
	assert.True(t, PaymentVodafoneCash.RequiresSenderReference())
	assert.True(t, PaymentInstaPay.RequiresSenderReference())
	assert.False(t, PaymentFawry.RequiresSenderReference())
	assert.False(t, PaymentMethod("Bitcoin").Valid())
}
