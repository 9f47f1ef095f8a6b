package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type stubProductWriter struct {
	items []domain.Product
}

func (s *stubProductWriter) UpsertProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	s.items = append(s.items, p)
	return p, nil
}

type stubCategoryWriter struct {
	items []domain.Category
}

func (s *stubCategoryWriter) UpsertCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	s.items = append(s.items, c)
	return c, nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `id,name,name.ar,description,category,basePrice,currency,image,inStock,option.id,option.label,option.price
val-tr,Valorant Points (Turkey Region),نقاط فالورانت,Turkey only,Valorant,90,EGP,https://example.com/tr.jpg,,vt-1,115 VP (TR),90
,,,,,,,,,vt-2,925 VP (TR),650
sub-prime,Amazon Prime (Egypt),,1 month,Subscription,29.00,EGP,,false,,,`

	products := &stubProductWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), products, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(products.items) != 2 {
		t.Fatalf("expected 2 products imported, got %d (%d saved)", count, len(products.items))
	}

	tr := products.items[0]
	if tr.ID != "val-tr" || tr.NameAr != "نقاط فالورانت" || tr.Category != "Valorant" || !tr.BasePrice.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("unexpected product data: %+v", tr)
	}
	if len(tr.Options) != 2 || tr.Options[1].ID != "vt-2" || !tr.Options[1].Price.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("expected continuation row to add an option, got %+v", tr.Options)
	}
	if tr.InStock != nil {
		t.Fatalf("blank inStock should stay unset")
	}

	prime := products.items[1]
	if prime.Available() || len(prime.Options) != 0 || !prime.BasePrice.Equal(decimal.NewFromInt(29)) {
		t.Fatalf("unexpected second product %+v", prime)
	}
}

func TestCSVImporter_RunCategoriesFile(t *testing.T) {
	csvData := "\ufeffname,name.ar,icon\nValorant,فالورانت,🎯\n,,\nGift Card,بطاقات هدايا,\n"
	cats := &stubCategoryWriter{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, cats)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 categories imported, got %d", count)
	}
	if cats.items[0].Name != "Valorant" || cats.items[0].Icon != "🎯" || cats.items[1].NameAr != "بطاقات هدايا" {
		t.Fatalf("unexpected categories %+v", cats.items)
	}
}

func TestCSVImporter_RejectsBadPrices(t *testing.T) {
	csvData := `id,name,basePrice
p1,Broken,abc`
	_, err := NewCSVImporter(strings.NewReader(csvData), &stubProductWriter{}, nil).Run(context.Background())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind(strings.NewReader("id,name,basePrice\np,P,1"))
	if err != nil {
		t.Fatalf("detect product kind: %v", err)
	}
	if kind != KindProducts {
		t.Fatalf("expected product kind, got %s", kind)
	}

	kind, err = DetectKind(strings.NewReader("name,name.ar,icon\nA,B,C"))
	if err != nil {
		t.Fatalf("detect category kind: %v", err)
	}
	if kind != KindCategories {
		t.Fatalf("expected category kind, got %s", kind)
	}

	if _, err := DetectKind(strings.NewReader("foo,bar\n1,2")); err == nil {
		t.Fatalf("expected error for unknown header")
	}
}
