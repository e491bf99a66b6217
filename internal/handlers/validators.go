package handlers

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"raydrip/internal/contact"
	"raydrip/internal/models"
)

// RegisterValidators adds the storefront binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	rules := map[string]validator.Func{
		"identifier": func(fl validator.FieldLevel) bool {
			return contact.IsIdentifier(fl.Field().String())
		},
		"mobile": func(fl validator.FieldLevel) bool {
			return contact.IsMobile(fl.Field().String())
		},
		"pincode": func(fl validator.FieldLevel) bool {
			return contact.IsPincode(fl.Field().String())
		},
		"size": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseSize(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
