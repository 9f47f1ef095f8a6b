// Package seed provides the default storefront data and writes it to a fresh
// snapshot backend.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
	"storefront/internal/service/customer"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type adminSeed struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Data is the full default state of a new store.
type Data struct {
	Store      domain.StoreConfig `yaml:"store"`
	Admin      adminSeed          `yaml:"admin"`
	Categories []domain.Category  `yaml:"categories"`
	Coupons    []domain.Coupon    `yaml:"coupons"`
	Products   []domain.Product   `yaml:"products"`
}

// AdminSeed converts the admin record for the user directory.
func (d Data) AdminSeed() customer.AdminSeed {
	return customer.AdminSeed{ID: d.Admin.ID, Email: d.Admin.Email, Name: d.Admin.Name, Password: d.Admin.Password}
}

// Defaults parses the embedded seed file.
func Defaults() (Data, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a seed document and checks its references.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}
	if d.Admin.Email == "" || d.Admin.Password == "" {
		return Data{}, fmt.Errorf("seed admin credentials required: %w", domain.ErrValidation)
	}
	known := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		known[c.Name] = true
	}
	for _, p := range d.Products {
		if p.ID == "" || p.Name == "" {
			return Data{}, fmt.Errorf("seed product without id or name: %w", domain.ErrValidation)
		}
		if !known[p.Category] {
			return Data{}, fmt.Errorf("seed product %s references unknown category %q: %w", p.ID, p.Category, domain.ErrValidation)
		}
	}
	return d, nil
}

// Apply writes every process-wide store that the backend does not hold yet.
// With overwrite set, existing documents are replaced too. It returns the keys
// that were written.
func Apply(ctx context.Context, repo snapshot.Repository, d Data, overwrite bool) ([]string, error) {
	docs := []struct {
		key   string
		value any
	}{
		{snapshot.KeyStoreConfig, d.Store},
		{snapshot.KeyCategories, d.Categories},
		{snapshot.KeyCoupons, d.Coupons},
		{snapshot.KeyProducts, d.Products},
		{snapshot.KeyUsers, []domain.User{}},
		{snapshot.KeyOrders, []domain.Order{}},
	}

	var written []string
	for _, doc := range docs {
		if !overwrite {
			_, err := repo.Load(ctx, doc.key)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return written, fmt.Errorf("probe %s: %w", doc.key, err)
			}
		}
		data, err := json.Marshal(doc.value)
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", doc.key, err)
		}
		if err := repo.Save(ctx, doc.key, data); err != nil {
			return written, fmt.Errorf("save %s: %w", doc.key, err)
		}
		written = append(written, doc.key)
	}
	return written, nil
}
