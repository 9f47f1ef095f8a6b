package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func line(price int64, qty int) []domain.CartItem {
	return []domain.CartItem{{Product: domain.Product{ID: "p", BasePrice: decimal.NewFromInt(price)}, Quantity: qty}}
}

func place(t *testing.T, svc *Service, total int64) domain.Order {
	t.Helper()
	o, err := svc.Place(context.Background(), PlaceInput{
		CustomerName:  "Ali",
		CustomerEmail: "Ali@Example.com",
		CustomerPhone: "0100",
		Items:         line(total, 1),
		Total:         decimal.NewFromInt(total),
		PaymentMethod: domain.PaymentFawry,
	})
	require.NoError(t, err)
	return o
}

func newService(opts ...Option) (*Service, *snapshot.Adapter, *clock) {
	clk := &clock{t: time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)}
	store := snapshot.NewAdapter(snapshot.NewMemory(), nil)
	opts = append([]Option{WithClock(clk.Now)}, opts...)
	return New(context.Background(), store, nil, opts...), store, clk
}

func TestPlacePrependsPendingOrder(t *testing.T) {
	svc, store, _ := newService()
	first := place(t, svc, 100)
	second := place(t, svc, 200)

	assert.Regexp(t, `^ORD-[0-9A-Z]{26}$`, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.OrderPending, first.Status)
	assert.Equal(t, domain.GuestUserID, first.UserID)
	assert.Equal(t, "ali@example.com", first.CustomerEmail)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	persisted := snapshot.Load(context.Background(), store, snapshot.KeyOrders, []domain.Order(nil))
	require.Len(t, persisted, 2)
	assert.Equal(t, second.ID, persisted[0].ID)
}

func TestPlaceValidation(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Place(context.Background(), PlaceInput{PaymentMethod: domain.PaymentFawry})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = svc.Place(context.Background(), PlaceInput{Items: line(1, 1), PaymentMethod: "Cash"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStrictStatusTransitions(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	o := place(t, svc, 100)

	_, err := svc.UpdateStatus(ctx, o.ID, domain.OrderPending)
	require.NoError(t, err, "same status is a no-op")

	got, err := svc.UpdateStatus(ctx, o.ID, domain.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, got.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, domain.OrderCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "ORD-missing", domain.OrderCompleted)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, o.ID, "Shipped")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLenientStatusTransitions(t *testing.T) {
	svc, _, _ := newService(WithStatusGuard(GuardLenient))
	ctx := context.Background()
	o := place(t, svc, 100)

	_, err := svc.UpdateStatus(ctx, o.ID, domain.OrderCancelled)
	require.NoError(t, err)
	got, err := svc.UpdateStatus(ctx, o.ID, domain.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _, _ := newService()
	o := place(t, svc, 100)
	place(t, svc, 50)

	svc.Delete(context.Background(), o.ID)
	after := svc.List()
	svc.Delete(context.Background(), o.ID)
	assert.Equal(t, after, svc.List())
	assert.Len(t, after, 1)
}

func TestListByUserAndRecent(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		place(t, svc, int64(10*(i+1)))
	}
	mine, err := svc.Place(ctx, PlaceInput{UserID: "u-1", Items: line(5, 1), Total: decimal.NewFromInt(5), PaymentMethod: domain.PaymentInstaPay})
	require.NoError(t, err)

	byUser := svc.ListByUser("u-1")
	require.Len(t, byUser, 1)
	assert.Equal(t, mine.ID, byUser[0].ID)

	recent := svc.Recent(5)
	require.Len(t, recent, 5)
	assert.Equal(t, mine.ID, recent[0].ID)
	assert.Len(t, svc.Recent(50), 7)
}

func TestMetricsExample(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	a := place(t, svc, 100)
	b := place(t, svc, 200)
	c := place(t, svc, 50)
	_, err := svc.UpdateStatus(ctx, a.ID, domain.OrderCompleted)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, b.ID, domain.OrderCompleted)
	require.NoError(t, err)
	_ = c

	m := svc.Metrics(WindowAll)
	assert.True(t, decimal.NewFromInt(300).Equal(m.CompletedRevenue))
	assert.True(t, decimal.NewFromInt(50).Equal(m.PendingRevenue))
	assert.Equal(t, StatusCounts{Pending: 1, Completed: 2}, m.Counts)
	assert.True(t, decimal.NewFromInt(150).Equal(m.AvgOrder))
}

func TestMetricsWindows(t *testing.T) {
	svc, _, clk := newService()
	ctx := context.Background()
	now := clk.t

	stamp := func(at time.Time, total int64) {
		clk.t = at
		o := place(t, svc, total)
		_, err := svc.UpdateStatus(ctx, o.ID, domain.OrderCompleted)
		require.NoError(t, err)
	}
	stamp(now.Add(-40*24*time.Hour), 1000) // previous month
	stamp(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), 100) // this month, older than a week
	stamp(now.Add(-3*24*time.Hour), 10)    // this week
	stamp(now.Add(-1*time.Hour), 1)        // today
	clk.t = now

	assert.True(t, decimal.NewFromInt(1).Equal(svc.Metrics(WindowToday).CompletedRevenue))
	assert.True(t, decimal.NewFromInt(11).Equal(svc.Metrics(WindowWeek).CompletedRevenue))
	assert.True(t, decimal.NewFromInt(111).Equal(svc.Metrics(WindowMonth).CompletedRevenue))
	assert.True(t, decimal.NewFromInt(1111).Equal(svc.Metrics(WindowAll).CompletedRevenue))
	assert.True(t, svc.Metrics(WindowToday).AvgOrder.Equal(decimal.NewFromInt(1)))
}

func TestMetricsAvgZeroWithoutCompleted(t *testing.T) {
	svc, _, _ := newService()
	place(t, svc, 100)
	assert.True(t, svc.Metrics(WindowAll).AvgOrder.IsZero())
}

func TestDailyRevenue(t *testing.T) {
	svc, _, clk := newService()
	ctx := context.Background()
	now := clk.t

	for _, offset := range []int{0, 0, 2, 9} {
		clk.t = now.AddDate(0, 0, -offset)
		o := place(t, svc, 10)
		_, err := svc.UpdateStatus(ctx, o.ID, domain.OrderCompleted)
		require.NoError(t, err)
	}
	clk.t = now
	place(t, svc, 500) // pending, ignored

	points := svc.DailyRevenue(7)
	require.Len(t, points, 7)
	assert.Equal(t, "2025-06-12", points[0].Date)
	assert.Equal(t, "Thu", points[0].Label)
	assert.Equal(t, "2025-06-18", points[6].Date)
	assert.Equal(t, "Wed", points[6].Label)
	assert.True(t, decimal.NewFromInt(20).Equal(points[6].Sales))
	assert.True(t, decimal.NewFromInt(10).Equal(points[4].Sales))
	assert.True(t, points[0].Sales.IsZero())
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, WindowAll, w)
	_, err = ParseWindow("year")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
