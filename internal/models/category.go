package models

// Category groups catalog products and lists the subcategories in use.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
	ProductCount  int      `json:"productCount"`
}
