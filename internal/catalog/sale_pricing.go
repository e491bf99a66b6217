package catalog

import (
	"fmt"

	"raydrip/internal/models"
)

func validateSaleFields(p models.Product) error {
	if p.SalePercentage < 0 || p.SalePercentage > 99 {
		return fmt.Errorf("salePercentage must be between 0 and 99")
	}
	if !p.OnSale {
		return nil
	}
	if p.SalePercentage == 0 {
		return fmt.Errorf("salePercentage is required when onSale is true")
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < p.Price {
		return fmt.Errorf("originalPrice must not be less than price")
	}
	return nil
}
