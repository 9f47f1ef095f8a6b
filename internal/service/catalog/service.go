// Package catalog owns the product and category stores.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

// AllCategories disables the category filter in Search.
const AllCategories = "All"

const (
	DefaultCurrency = "EGP"
	DefaultImage    = "https://images.unsplash.com/photo-1542751371-adc38448a05e?auto=format&fit=crop&q=80&w=800"
)

// Defaults seed an empty or unreadable backend.
type Defaults struct {
	Products   []domain.Product
	Categories []domain.Category
}

type Service struct {
	mu         sync.Mutex
	store      *snapshot.Adapter
	logger     *zap.Logger
	products   []domain.Product
	categories []domain.Category
	sanitize   *bluemonday.Policy
	newID      func(prefix string) string
}

func New(ctx context.Context, store *snapshot.Adapter, defaults Defaults, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		logger:     logger,
		products:   snapshot.Load(ctx, store, snapshot.KeyProducts, cloneProducts(defaults.Products)),
		categories: snapshot.Load(ctx, store, snapshot.KeyCategories, append([]domain.Category(nil), defaults.Categories...)),
		sanitize:   bluemonday.StrictPolicy(),
		newID: func(prefix string) string {
			return prefix + uuid.NewString()
		},
	}
}

// Products returns every product in catalogue order.
func (s *Service) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.products)
}

func (s *Service) Product(id string) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return s.products[idx].Clone(), nil
}

// Search filters by a case-insensitive term over the localized name and
// description, and by category name unless category is empty or "All".
func (s *Service) Search(term, category, lang string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	category = strings.TrimSpace(category)
	filterCategory := category != "" && !strings.EqualFold(category, AllCategories)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if filterCategory && !strings.EqualFold(p.Category, category) {
			continue
		}
		if term != "" {
			name := strings.ToLower(p.LocalizedName(lang))
			desc := strings.ToLower(p.LocalizedDescription(lang))
			if !strings.Contains(name, term) && !strings.Contains(desc, term) {
				continue
			}
		}
		out = append(out, p.Clone())
	}
	return out
}

// CreateProduct appends a product under a freshly generated id.
func (s *Service) CreateProduct(ctx context.Context, in domain.Product) (domain.Product, error) {
	p, err := s.normalizeProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = s.newID("prod-")
	for i := range p.Options {
		if p.Options[i].ID == "" {
			p.Options[i].ID = s.newID("opt-")
		}
	}
	if p.InStock == nil {
		p.InStock = domain.BoolPtr(true)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	s.persistProducts(ctx)
	s.logger.Info("product created", zap.String("id", p.ID))
	return p.Clone(), nil
}

// UpdateProduct replaces the product with the same id.
func (s *Service) UpdateProduct(ctx context.Context, in domain.Product) (domain.Product, error) {
	p, err := s.normalizeProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	for i := range p.Options {
		if p.Options[i].ID == "" {
			p.Options[i].ID = s.newID("opt-")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(in.ID)
	if idx < 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	s.products[idx] = p
	s.persistProducts(ctx)
	return p.Clone(), nil
}

// UpsertProduct replaces the product with the same id or appends it, keeping
// a caller-supplied id. Used by bulk imports.
func (s *Service) UpsertProduct(ctx context.Context, in domain.Product) (domain.Product, error) {
	p, err := s.normalizeProduct(in)
	if err != nil {
		return domain.Product{}, err
	}
	if p.ID == "" {
		p.ID = s.newID("prod-")
	}
	for i := range p.Options {
		if p.Options[i].ID == "" {
			p.Options[i].ID = s.newID("opt-")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.productIndex(p.ID); idx >= 0 {
		s.products[idx] = p
	} else {
		s.products = append(s.products, p)
	}
	s.persistProducts(ctx)
	return p.Clone(), nil
}

// DeleteProduct removes the product; unknown ids are ignored. Orders and carts
// hold snapshots and are unaffected.
func (s *Service) DeleteProduct(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	s.persistProducts(ctx)
	s.logger.Info("product deleted", zap.String("id", id))
}

// SetStock flips the availability flag.
func (s *Service) SetStock(ctx context.Context, id string, inStock bool) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	s.products[idx].InStock = domain.BoolPtr(inStock)
	s.persistProducts(ctx)
	return s.products[idx].Clone(), nil
}

func (s *Service) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Category(nil), s.categories...)
}

func (s *Service) CreateCategory(ctx context.Context, in domain.Category) (domain.Category, error) {
	c, err := s.normalizeCategory(in)
	if err != nil {
		return domain.Category{}, err
	}
	c.ID = s.newID("cat-")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return domain.Category{}, fmt.Errorf("category %q: %w", c.Name, domain.ErrAlreadyExists)
		}
	}
	s.categories = append(s.categories, c)
	s.persistCategories(ctx)
	return c, nil
}

// UpsertCategory matches an existing category by name and replaces it,
// otherwise appends a new one.
func (s *Service) UpsertCategory(ctx context.Context, in domain.Category) (domain.Category, error) {
	c, err := s.normalizeCategory(in)
	if err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			c.ID = existing.ID
			s.categories[i] = c
			s.persistCategories(ctx)
			return c, nil
		}
	}
	if c.ID == "" {
		c.ID = s.newID("cat-")
	}
	s.categories = append(s.categories, c)
	s.persistCategories(ctx)
	return c, nil
}

// UpdateCategory replaces a category. Products keep referencing the old name
// until they are edited.
func (s *Service) UpdateCategory(ctx context.Context, in domain.Category) (domain.Category, error) {
	c, err := s.normalizeCategory(in)
	if err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.categoryIndex(in.ID)
	if idx < 0 {
		return domain.Category{}, domain.ErrNotFound
	}
	s.categories[idx] = c
	s.persistCategories(ctx)
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.categoryIndex(id)
	if idx < 0 {
		return
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	s.persistCategories(ctx)
}

func (s *Service) normalizeProduct(in domain.Product) (domain.Product, error) {
	p := in.Clone()
	p.Name = s.clean(p.Name)
	p.NameAr = s.clean(p.NameAr)
	p.Description = s.clean(p.Description)
	p.DescriptionAr = s.clean(p.DescriptionAr)
	p.Category = strings.TrimSpace(p.Category)
	p.Image = strings.TrimSpace(p.Image)
	if p.Name == "" {
		return domain.Product{}, fmt.Errorf("product name required: %w", domain.ErrValidation)
	}
	if p.BasePrice.IsNegative() {
		return domain.Product{}, fmt.Errorf("base price must not be negative: %w", domain.ErrValidation)
	}
	for i, o := range p.Options {
		p.Options[i].Label = s.clean(o.Label)
		if o.Price.IsNegative() {
			return domain.Product{}, fmt.Errorf("option %q price must not be negative: %w", o.Label, domain.ErrValidation)
		}
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if len(p.Options) > 0 && p.BasePrice.Equal(decimal.Zero) {
		p.BasePrice = p.Options[0].Price
	}
	return p, nil
}

func (s *Service) normalizeCategory(in domain.Category) (domain.Category, error) {
	c := domain.Category{
		ID:     in.ID,
		Name:   s.clean(in.Name),
		NameAr: s.clean(in.NameAr),
		Icon:   strings.TrimSpace(in.Icon),
	}
	if c.Name == "" {
		return domain.Category{}, fmt.Errorf("category name required: %w", domain.ErrValidation)
	}
	return c, nil
}

// plainText undoes the escaping bluemonday applies to harmless characters.
// Angle brackets stay escaped.
var plainText = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

func (s *Service) clean(v string) string {
	return strings.TrimSpace(plainText.Replace(s.sanitize.Sanitize(v)))
}

func (s *Service) productIndex(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) categoryIndex(id string) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persistProducts(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyProducts, s.products)
}

func (s *Service) persistCategories(ctx context.Context) {
	s.store.Save(ctx, snapshot.KeyCategories, s.categories)
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
