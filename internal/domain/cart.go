package domain

import "github.com/shopspring/decimal"

// CartItem is a product snapshot plus quantity and an optional selected option.
// Lines merge on (product id, option id).
type CartItem struct {
	Product
	Quantity       int            `json:"quantity"`
	SelectedOption *ProductOption `json:"selectedOption,omitempty"`
}

// OptionID returns the selected option id or "" when none is selected.
func (i CartItem) OptionID() string {
	if i.SelectedOption == nil {
		return ""
	}
	return i.SelectedOption.ID
}

// Matches reports whether the line is identified by the given pair.
func (i CartItem) Matches(productID, optionID string) bool {
	return i.ID == productID && i.OptionID() == optionID
}

// UnitPrice is the selected option's price, or the base price without one.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.SelectedOption != nil {
		return i.SelectedOption.Price
	}
	return i.BasePrice
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone deep-copies the line, including the embedded product.
func (i CartItem) Clone() CartItem {
	out := i
	out.Product = i.Product.Clone()
	if i.SelectedOption != nil {
		opt := *i.SelectedOption
		out.SelectedOption = &opt
	}
	return out
}

// CloneItems deep-copies a list of lines.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for idx, it := range items {
		out[idx] = it.Clone()
	}
	return out
}

// SumItems totals a list of lines.
func SumItems(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}
