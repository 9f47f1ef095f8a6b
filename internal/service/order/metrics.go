package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Window selects which orders the dashboard aggregates.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

func ParseWindow(v string) (Window, error) {
	switch w := Window(v); w {
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return w, nil
	case "":
		return WindowAll, nil
	}
	return "", fmt.Errorf("window %q: %w", v, domain.ErrValidation)
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

type Metrics struct {
	Window           Window          `json:"window"`
	CompletedRevenue decimal.Decimal `json:"completedRevenue"`
	PendingRevenue   decimal.Decimal `json:"pendingRevenue"`
	Counts           StatusCounts    `json:"counts"`
	AvgOrder         decimal.Decimal `json:"avgOrder"`
}

// DailyPoint is one day of completed revenue.
type DailyPoint struct {
	Label string          `json:"name"`
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// Metrics aggregates orders dated on or after the window start. Today starts
// at local midnight, week is the trailing seven days, month starts on the
// first of the calendar month.
func (s *Service) Metrics(window Window) Metrics {
	now := s.now()
	start, bounded := windowStart(now, window)

	s.mu.Lock()
	defer s.mu.Unlock()
	m := Metrics{Window: window, CompletedRevenue: decimal.Zero, PendingRevenue: decimal.Zero, AvgOrder: decimal.Zero}
	for _, o := range s.orders {
		if bounded && o.Date.Before(start) {
			continue
		}
		switch o.Status {
		case domain.OrderCompleted:
			m.Counts.Completed++
			m.CompletedRevenue = m.CompletedRevenue.Add(o.Total)
		case domain.OrderPending:
			m.Counts.Pending++
			m.PendingRevenue = m.PendingRevenue.Add(o.Total)
		case domain.OrderCancelled:
			m.Counts.Cancelled++
		}
	}
	if m.Counts.Completed > 0 {
		m.AvgOrder = m.CompletedRevenue.Div(decimal.NewFromInt(int64(m.Counts.Completed))).Round(2)
	}
	return m
}

// DailyRevenue buckets completed revenue per local calendar day for the last
// days days, oldest first, today included.
func (s *Service) DailyRevenue(days int) []DailyPoint {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-(days-1))
		key := day.Format(time.DateOnly)
		points[i] = DailyPoint{Label: day.Format("Mon"), Date: key, Sales: decimal.Zero}
		index[key] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.Status != domain.OrderCompleted {
			continue
		}
		key := o.Date.In(loc).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			points[i].Sales = points[i].Sales.Add(o.Total)
		}
	}
	return points
}

func windowStart(now time.Time, window Window) (time.Time, bool) {
	switch window {
	case WindowToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case WindowWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case WindowMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}
