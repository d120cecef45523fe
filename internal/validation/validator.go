package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
)

var mobileRe = regexp.MustCompile(`^[0-9]{10}$`)

// New returns a configured validator with the custom validators registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// mobile10: a well-formed 10-digit mobile number, digits only.
	_ = v.RegisterValidation("mobile10", func(fl validatorv10.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})

	return v
}
