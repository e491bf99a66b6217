package checkout

import (
	"strings"

	"raydrip/internal/apperror"
	"raydrip/internal/contact"
	"raydrip/internal/models"
)

// ValidateDetails applies the pre-payment rules in order and reports the
// first one that fails.
func ValidateDetails(d models.ShippingDetails) error {
	switch {
	case strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Email) == "" || strings.TrimSpace(d.Phone) == "":
		return apperror.Validation("please fill in your name, email and phone number")
	case !contact.IsEmail(d.Email):
		return apperror.Validation("please enter a valid email address")
	case !contact.IsMobile(d.Phone):
		return apperror.Validation("please enter a valid 10-digit mobile number")
	case !contact.IsPincode(d.Pincode):
		return apperror.Validation("please enter a valid 6-digit pincode")
	}
	return nil
}

func normalizeDetails(d models.ShippingDetails) models.ShippingDetails {
	return models.ShippingDetails{
		Name:    strings.TrimSpace(d.Name),
		Email:   contact.Normalize(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
		State:   strings.TrimSpace(d.State),
		Pincode: strings.TrimSpace(d.Pincode),
	}
}
