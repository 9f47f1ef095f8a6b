package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

func newTestService(t *testing.T) (*Service, *snapshot.Adapter) {
	t.Helper()
	store := snapshot.NewAdapter(snapshot.NewMemory(), nil)
	svc := New(context.Background(), store, Defaults{
		Products: []domain.Product{
			{ID: "val-tr", Name: "Valorant Points TR", NameAr: "نقاط فالورانت تركيا", Description: "Turkey region", BasePrice: decimal.NewFromInt(90), Currency: "EGP", Category: "Valorant"},
			{ID: "fn-vbucks", Name: "Fortnite V-Bucks", Description: "Top up your account", BasePrice: decimal.NewFromInt(450), Currency: "EGP", Category: "Fortnite"},
		},
		Categories: []domain.Category{{ID: "1", Name: "Valorant"}, {ID: "2", Name: "Fortnite"}},
	}, nil)
	return svc, store
}

func TestSearchByTermAndCategory(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Len(t, svc.Search("", AllCategories, "en"), 2)
	assert.Len(t, svc.Search("", "", "en"), 2)

	got := svc.Search("v-bucks", "All", "en")
	require.Len(t, got, 1)
	assert.Equal(t, "fn-vbucks", got[0].ID)

	got = svc.Search("", "valorant", "en")
	require.Len(t, got, 1)
	assert.Equal(t, "val-tr", got[0].ID)

	got = svc.Search("تركيا", "All", "ar")
	require.Len(t, got, 1)
	assert.Equal(t, "val-tr", got[0].ID)

	// Falls back to the English text when no Arabic variant exists.
	assert.Len(t, svc.Search("top up", "All", "ar"), 1)
	assert.Empty(t, svc.Search("minecraft", "All", "en"))
}

func TestCreateProductAssignsIDAndDefaults(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, domain.Product{
		Name:      "<b>PlayStation</b> Card",
		BasePrice: decimal.NewFromInt(550),
		Category:  "Gift Card",
		Options:   []domain.ProductOption{{Label: "$10", Price: decimal.NewFromInt(550)}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^prod-[0-9a-f-]{36}$`, p.ID)
	assert.Equal(t, "PlayStation Card", p.Name)
	assert.Equal(t, DefaultCurrency, p.Currency)
	assert.Equal(t, DefaultImage, p.Image)
	assert.True(t, p.Available())
	assert.NotEmpty(t, p.Options[0].ID)

	persisted := snapshot.Load(ctx, store, snapshot.KeyProducts, []domain.Product(nil))
	require.Len(t, persisted, 3)
	assert.Equal(t, p.ID, persisted[2].ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "  "})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.CreateProduct(context.Background(), domain.Product{Name: "x", BasePrice: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Product("val-tr")
	require.NoError(t, err)
	p.BasePrice = decimal.NewFromInt(95)
	_, err = svc.UpdateProduct(ctx, p)
	require.NoError(t, err)

	got, err := svc.Product("val-tr")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(95).Equal(got.BasePrice))

	_, err = svc.UpdateProduct(ctx, domain.Product{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	svc.DeleteProduct(ctx, "val-tr")
	svc.DeleteProduct(ctx, "val-tr")
	_, err = svc.Product("val-tr")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, svc.Products(), 1)
}

func TestSetStock(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.SetStock(context.Background(), "fn-vbucks", false)
	require.NoError(t, err)
	assert.False(t, p.Available())

	_, err = svc.SetStock(context.Background(), "nope", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReturnedProductsAreCopies(t *testing.T) {
	svc, _ := newTestService(t)
	list := svc.Products()
	list[0].Name = "mutated"
	p, err := svc.Product(list[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", p.Name)
}

func TestCategoryCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, domain.Category{Name: "Subscription", NameAr: "اشتراكات"})
	require.NoError(t, err)
	assert.Regexp(t, `^cat-`, c.ID)

	_, err = svc.CreateCategory(ctx, domain.Category{Name: "subscription"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	c.Icon = "🎮"
	_, err = svc.UpdateCategory(ctx, c)
	require.NoError(t, err)

	svc.DeleteCategory(ctx, "1")
	names := []string{}
	for _, cat := range svc.Categories() {
		names = append(names, cat.Name)
	}
	assert.Equal(t, []string{"Fortnite", "Subscription"}, names)
}

func TestReloadsFromBackend(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, domain.Product{Name: "Prime", BasePrice: decimal.NewFromInt(29)})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, domain.Category{Name: "Subscription"})
	require.NoError(t, err)

	reloaded := New(ctx, store, Defaults{}, nil)
	assert.Len(t, reloaded.Products(), 3)
	assert.Len(t, reloaded.Categories(), 3)
}

func TestUpsertKeepsSuppliedIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.UpsertProduct(ctx, domain.Product{ID: "val-tr", Name: "Valorant TR", BasePrice: decimal.NewFromInt(99)})
	require.NoError(t, err)
	assert.Equal(t, "val-tr", p.ID)
	assert.Len(t, svc.Products(), 2)

	p, err = svc.UpsertProduct(ctx, domain.Product{ID: "imported-1", Name: "Imported", BasePrice: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "imported-1", p.ID)
	assert.Len(t, svc.Products(), 3)

	c, err := svc.UpsertCategory(ctx, domain.Category{Name: "valorant", NameAr: "فالورانت"})
	require.NoError(t, err)
	assert.Equal(t, "1", c.ID)
	assert.Len(t, svc.Categories(), 2)
}

func TestCreateProductSanitizesText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, domain.Product{
		Name:        "&lt;img src=x onerror=alert(1)&gt;",
		Description: `<script>alert(1)</script>Tom & Jerry's "pack"`,
		BasePrice:   decimal.NewFromInt(10),
		Category:    "Valorant",
	})
	require.NoError(t, err)
	assert.NotContains(t, p.Name, "<")
	assert.Equal(t, "&lt;img src=x onerror=alert(1)&gt;", p.Name)
	assert.Equal(t, `Tom & Jerry's "pack"`, p.Description)
}
