package handlers

import (
	"raydrip/internal/cart"
	"raydrip/internal/models"
	"raydrip/internal/money"
)

// productView adds the display strings the storefront renders.
type productView struct {
	models.Product
	UnitPrice            money.Amount `json:"unitPrice"`
	DisplayPrice         string       `json:"displayPrice"`
	DisplayOriginalPrice string       `json:"displayOriginalPrice,omitempty"`
}

func toProductView(p models.Product) productView {
	view := productView{
		Product:      p,
		UnitPrice:    p.UnitPrice(),
		DisplayPrice: p.UnitPrice().String(),
	}
	if p.IsOnSale() && p.OriginalPrice != nil {
		view.DisplayOriginalPrice = p.OriginalPrice.String()
	}
	return view
}

func toProductViews(products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

type cartLineView struct {
	productView
	Quantity         int          `json:"quantity"`
	SelectedSize     models.Size  `json:"selectedSize,omitempty"`
	LineTotal        money.Amount `json:"lineTotal"`
	DisplayLineTotal string       `json:"displayLineTotal"`
}

type cartView struct {
	Items        []cartLineView `json:"items"`
	TotalItems   int            `json:"totalItems"`
	TotalPrice   money.Amount   `json:"totalPrice"`
	DisplayTotal string         `json:"displayTotal"`
}

func toCartView(c *cart.Cart) cartView {
	lines := make([]cartLineView, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, cartLineView{
			productView:      toProductView(item.Product),
			Quantity:         item.Quantity,
			SelectedSize:     item.SelectedSize,
			LineTotal:        item.LineTotal(),
			DisplayLineTotal: item.LineTotal().String(),
		})
	}
	return cartView{
		Items:        lines,
		TotalItems:   c.TotalItems(),
		TotalPrice:   c.TotalPrice(),
		DisplayTotal: c.TotalPrice().String(),
	}
}

type orderView struct {
	models.Order
	DisplayTotal string `json:"displayTotal"`
}

func toOrderViews(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{Order: o, DisplayTotal: o.Total.String()})
	}
	return views
}
