// Package validation checks request payloads against their `validate` tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"eventflex/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	ifscRegex  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ifscRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// Struct validates s and returns a 400 apperr describing the first failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.BadRequest(describe(verrs[0]))
	}
	return apperr.BadRequest("invalid request")
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "ifsc":
		return fmt.Sprintf("%s must be a valid IFSC code", field)
	case "password":
		return fmt.Sprintf("%s must be %d-%d characters and contain a special character", field, MinPasswordLength, MaxPasswordLength)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
