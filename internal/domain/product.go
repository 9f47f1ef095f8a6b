package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductOption is a purchasable variant of a product with its own price.
type ProductOption struct {
	ID    string          `json:"id" yaml:"id"`
	Label string          `json:"label" yaml:"label"`
	Price decimal.Decimal `json:"price" yaml:"price"`
}

type Product struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	NameAr        string          `json:"nameAr,omitempty" yaml:"nameAr"`
	Description   string          `json:"description" yaml:"description"`
	DescriptionAr string          `json:"descriptionAr,omitempty" yaml:"descriptionAr"`
	BasePrice     decimal.Decimal `json:"basePrice" yaml:"basePrice"`
	Currency      string          `json:"currency" yaml:"currency"`
	Category      string          `json:"category" yaml:"category"`
	Image         string          `json:"image" yaml:"image"`
	Options       []ProductOption `json:"options,omitempty" yaml:"options"`
	// InStock is optional; an absent flag means the product is available.
	InStock *bool `json:"inStock,omitempty" yaml:"inStock"`
}

// Available reports whether the product is in stock.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// Option returns the option with the given id.
func (p Product) Option(id string) (ProductOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ProductOption{}, false
}

// Clone returns a deep copy so the result shares no slices or pointers with p.
func (p Product) Clone() Product {
	out := p
	if p.Options != nil {
		out.Options = make([]ProductOption, len(p.Options))
		copy(out.Options, p.Options)
	}
	if p.InStock != nil {
		v := *p.InStock
		out.InStock = &v
	}
	return out
}

// LocalizedName picks the Arabic name when requested and present.
func (p Product) LocalizedName(lang string) string {
	if strings.EqualFold(lang, "ar") && p.NameAr != "" {
		return p.NameAr
	}
	return p.Name
}

func (p Product) LocalizedDescription(lang string) string {
	if strings.EqualFold(lang, "ar") && p.DescriptionAr != "" {
		return p.DescriptionAr
	}
	return p.Description
}

// BoolPtr is a convenience for optional flags.
func BoolPtr(v bool) *bool {
	return &v
}
