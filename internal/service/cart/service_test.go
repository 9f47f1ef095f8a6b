package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

func valorant() domain.Product {
	return domain.Product{
		ID:        "val-mena",
		Name:      "Valorant Points MENA",
		BasePrice: decimal.NewFromInt(115),
		Currency:  "EGP",
		Options: []domain.ProductOption{
			{ID: "vm-1", Label: "475 VP", Price: decimal.NewFromInt(115)},
			{ID: "vm-2", Label: "1000 VP", Price: decimal.NewFromInt(475)},
		},
	}
}

func newService() (*Service, *snapshot.Adapter) {
	store := snapshot.NewAdapter(snapshot.NewMemory(), nil)
	return New(store, nil), store
}

func TestAddMergesOnProductAndOption(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p := valorant()

	if _, err := svc.Add(ctx, "s1", p, "vm-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "s1", p, "vm-1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.Add(ctx, "s1", p, "vm-2", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if items[0].Quantity != 3 || items[0].OptionID() != "vm-1" {
		t.Fatalf("unexpected first line %+v", items[0])
	}
	if got := svc.Count(ctx, "s1"); got != 4 {
		t.Fatalf("expected 4 units, got %d", got)
	}
}

func TestAddWithoutOptionUsesBasePrice(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p := valorant()

	if _, err := svc.Add(ctx, "s1", p, "", 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(ctx, "s1", p, "vm-2", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	// 115*1 + 475*2
	if got := svc.Total(ctx, "s1"); !got.Equal(decimal.NewFromInt(1065)) {
		t.Fatalf("unexpected total %s", got)
	}
}

func TestAddUnknownOption(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Add(context.Background(), "s1", valorant(), "nope", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCartHoldsSnapshots(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p := valorant()
	if _, err := svc.Add(ctx, "s1", p, "vm-1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	p.Options[0].Price = decimal.NewFromInt(999)
	p.Name = "renamed"

	items := svc.Items(ctx, "s1")
	if items[0].Name != "Valorant Points MENA" || !items[0].UnitPrice().Equal(decimal.NewFromInt(115)) {
		t.Fatalf("cart line changed with the catalog: %+v", items[0])
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	p := valorant()
	_, _ = svc.Add(ctx, "s1", p, "vm-1", 1)
	_, _ = svc.Add(ctx, "s1", p, "", 1)

	items := svc.Remove(ctx, "s1", "val-mena", "missing")
	if len(items) != 2 {
		t.Fatalf("removing an absent line must be a no-op, got %d lines", len(items))
	}
	items = svc.Remove(ctx, "s1", "val-mena", "")
	if len(items) != 1 || items[0].OptionID() != "vm-1" {
		t.Fatalf("unexpected lines after remove: %+v", items)
	}

	svc.Clear(ctx, "s1")
	if got := svc.Items(ctx, "s1"); len(got) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(got))
	}
	if !svc.Total(ctx, "s1").IsZero() {
		t.Fatalf("expected zero total")
	}
}

func TestSessionsAreIsolatedAndPersisted(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	_, _ = svc.Add(ctx, "s1", valorant(), "vm-2", 1)

	if got := svc.Items(ctx, "s2"); len(got) != 0 {
		t.Fatalf("session s2 sees s1 cart")
	}

	reloaded := New(store, nil)
	items := reloaded.Items(ctx, "s1")
	if len(items) != 1 || items[0].SelectedOption == nil || items[0].SelectedOption.ID != "vm-2" {
		t.Fatalf("cart not restored: %+v", items)
	}

	reloaded.Forget(ctx, "s1")
	if got := New(store, nil).Items(ctx, "s1"); len(got) != 0 {
		t.Fatalf("forgotten cart still persisted")
	}
}
