// Package cart implements the shopping cart: lines keyed by product id and
// selected size, with totals derived on every read.
package cart

import (
	"time"

	"raydrip/internal/models"
	"raydrip/internal/money"
)

type Cart struct {
	Items     []models.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (c *Cart) find(productID string, size models.Size) int {
	for i, item := range c.Items {
		if item.ID == productID && item.SelectedSize == size {
			return i
		}
	}
	return -1
}

// Add merges quantity into the (product, size) line or appends a new one.
// A quantity below 1 adds a single unit.
func (c *Cart) Add(product models.Product, quantity int, size models.Size) {
	if quantity < 1 {
		quantity = 1
	}
	if i := c.find(product.ID, size); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}
	c.Items = append(c.Items, models.CartItem{
		Product:      product,
		Quantity:     quantity,
		SelectedSize: size,
	})
}

// Remove deletes the matching line. Missing lines are ignored.
func (c *Cart) Remove(productID string, size models.Size) {
	if i := c.find(productID, size); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// UpdateQuantity sets the line quantity exactly; zero or less removes it.
func (c *Cart) UpdateQuantity(productID string, quantity int, size models.Size) {
	if quantity <= 0 {
		c.Remove(productID, size)
		return
	}
	if i := c.find(productID, size); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

// UpdateSize moves a line from oldSize to newSize, summing quantities when
// the destination line already exists.
func (c *Cart) UpdateSize(productID string, newSize, oldSize models.Size) {
	if newSize == oldSize {
		return
	}
	src := c.find(productID, oldSize)
	if src < 0 {
		return
	}
	if dst := c.find(productID, newSize); dst >= 0 {
		c.Items[dst].Quantity += c.Items[src].Quantity
		c.Items = append(c.Items[:src], c.Items[src+1:]...)
		return
	}
	c.Items[src].SelectedSize = newSize
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c Cart) TotalPrice() money.Amount {
	var total money.Amount
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the lines that later mutations cannot reach.
func (c Cart) Snapshot() []models.CartItem {
	out := make([]models.CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
