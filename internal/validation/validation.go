package validation

import (
	"fmt"
	"sync"

	"salon_backend/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// enumTags maps binding tags to the domain enum they check.
var enumTags = map[string]func(string) bool{
	"payment_method":   models.IsValidPaymentMethod,
	"payment_status":   models.IsValidPaymentStatus,
	"service_category": models.IsValidServiceCategory,
	"gender":           models.IsValidGender,
	"user_role":        models.IsValidUserRole,
	"membership_level": models.IsValidMembershipLevel,
}

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the domain tags on gin's default validator. It is safe
// to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn installs the domain tags on v.
func RegisterOn(v *validator.Validate) error {
	for tag, valid := range enumTags {
		check := valid
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}
