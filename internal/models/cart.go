package models

import "raydrip/internal/money"

// CartItem is a product line in a cart. A cart holds at most one item per
// (product id, selected size).
type CartItem struct {
	Product
	Quantity     int  `json:"quantity"`
	SelectedSize Size `json:"selectedSize,omitempty"`
}

// LineTotal is the unit price times quantity.
func (i CartItem) LineTotal() money.Amount {
	return i.UnitPrice().Mul(i.Quantity)
}
