package models

import "raydrip/internal/money"

// Product is immutable catalog data.
type Product struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Price          money.Amount  `json:"price"`
	OriginalPrice  *money.Amount `json:"originalPrice,omitempty"`
	OnSale         bool          `json:"onSale"`
	SalePercentage int           `json:"salePercentage"`
	Images         StringList    `json:"images"`
	Category       string        `json:"category"`
	Subcategory    string        `json:"subcategory,omitempty"`
	Tags           StringList    `json:"tags,omitempty"`
	Sizes          []Size        `json:"sizes,omitempty"`
	Description    string        `json:"description,omitempty"`
}

// IsOnSale reports whether the sale price applies.
func (p Product) IsOnSale() bool {
	return p.OnSale && p.SalePercentage > 0 && p.SalePercentage < 100
}

// UnitPrice is the price charged for one unit: the original price reduced by
// the sale percentage while on sale, else the list price.
func (p Product) UnitPrice() money.Amount {
	if !p.IsOnSale() {
		return p.Price
	}
	base := p.Price
	if p.OriginalPrice != nil {
		base = *p.OriginalPrice
	}
	return base.Discount(p.SalePercentage)
}

// AllowsSize reports whether size can be selected for the product. Products
// without a size list accept only the empty size.
func (p Product) AllowsSize(size Size) bool {
	if len(p.Sizes) == 0 {
		return size == ""
	}
	if size == "" {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
