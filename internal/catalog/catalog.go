// Package catalog serves the static product list.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"raydrip/internal/models"
	"raydrip/internal/money"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type productRecord struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Price          string            `yaml:"price"`
	OriginalPrice  string            `yaml:"originalPrice"`
	OnSale         bool              `yaml:"onSale"`
	SalePercentage int               `yaml:"salePercentage"`
	Images         models.StringList `yaml:"images"`
	Category       string            `yaml:"category"`
	Subcategory    string            `yaml:"subcategory"`
	Tags           models.StringList `yaml:"tags"`
	Sizes          models.StringList `yaml:"sizes"`
	Description    string            `yaml:"description"`
}

type catalogFile struct {
	Products []productRecord `yaml:"products"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// Load parses a YAML catalog. Display prices become minor-unit amounts here.
func Load(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(file.Products))}
	for i, rec := range file.Products {
		product, err := normalizeProductRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i, rec.ID, err)
		}
		if _, dup := c.byID[product.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %s", i, product.ID)
		}
		c.byID[product.ID] = len(c.products)
		c.products = append(c.products, product)
	}
	return c, nil
}

func normalizeProductRecord(rec productRecord) (models.Product, error) {
	id := strings.TrimSpace(rec.ID)
	name := strings.TrimSpace(rec.Name)
	if id == "" || name == "" {
		return models.Product{}, fmt.Errorf("id and name are required")
	}

	price, err := money.ParseDisplay(rec.Price)
	if err != nil {
		return models.Product{}, fmt.Errorf("price %q: %w", rec.Price, err)
	}

	p := models.Product{
		ID:             id,
		Name:           name,
		Price:          price,
		OnSale:         rec.OnSale,
		SalePercentage: rec.SalePercentage,
		Images:         rec.Images,
		Category:       strings.ToLower(strings.TrimSpace(rec.Category)),
		Subcategory:    strings.ToLower(strings.TrimSpace(rec.Subcategory)),
		Tags:           rec.Tags,
		Description:    strings.TrimSpace(rec.Description),
	}
	if p.Images == nil {
		p.Images = models.StringList{}
	}

	if strings.TrimSpace(rec.OriginalPrice) != "" {
		original, err := money.ParseDisplay(rec.OriginalPrice)
		if err != nil {
			return models.Product{}, fmt.Errorf("originalPrice %q: %w", rec.OriginalPrice, err)
		}
		p.OriginalPrice = &original
	}

	for _, raw := range rec.Sizes {
		size, ok := models.ParseSize(raw)
		if !ok || size == "" {
			return models.Product{}, fmt.Errorf("unknown size %q", raw)
		}
		p.Sizes = append(p.Sizes, size)
	}

	if err := validateSaleFields(p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Get returns the product with id.
func (c *Catalog) Get(id string) (models.Product, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Filter selects a view of the catalog. Zero values mean "any".
type Filter struct {
	Category    string
	Subcategory string
	Search      string
	SaleOnly    bool
	Page        int
	Limit       int
}

// Page is an offset page of products.
type Page struct {
	Items      []models.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// List returns the products matching f in catalog order.
func (c *Catalog) List(f Filter) Page {
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	category := strings.ToLower(strings.TrimSpace(f.Category))
	subcategory := strings.ToLower(strings.TrimSpace(f.Subcategory))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]models.Product, 0)
	for _, p := range c.products {
		if category != "" && p.Category != category {
			continue
		}
		if subcategory != "" && p.Subcategory != subcategory {
			continue
		}
		if f.SaleOnly && !p.IsOnSale() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Page{
		Items:      matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// Categories lists each category with its subcategories, sorted by name.
func (c *Catalog) Categories() []models.Category {
	index := map[string]*models.Category{}
	subs := map[string]map[string]bool{}
	for _, p := range c.products {
		cat, ok := index[p.Category]
		if !ok {
			cat = &models.Category{Name: p.Category, Subcategories: []string{}}
			index[p.Category] = cat
			subs[p.Category] = map[string]bool{}
		}
		cat.ProductCount++
		if p.Subcategory != "" && !subs[p.Category][p.Subcategory] {
			subs[p.Category][p.Subcategory] = true
			cat.Subcategories = append(cat.Subcategories, p.Subcategory)
		}
	}

	out := make([]models.Category, 0, len(index))
	for _, cat := range index {
		sort.Strings(cat.Subcategories)
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
