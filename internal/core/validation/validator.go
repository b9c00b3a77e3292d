// Package validation wraps go-playground/validator with the catalog's custom
// rules and human-readable error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/library-catalog/internal/core/domain"
)

// MinPublicationYear is the earliest accepted publication year.
const MinPublicationYear = 1000

// Validator validates input DTOs. Safe for concurrent use.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New returns a Validator whose publication-year upper bound follows now.
// A nil now defaults to time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = val.v.RegisterValidation("notblank", notBlank)
	_ = val.v.RegisterValidation("pubyear", val.publicationYear)
	return val
}

// Struct validates i and returns an error wrapping domain.ErrInvalidInput that
// lists every failing field.
func (val *Validator) Struct(i any) error {
	if err := val.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, val.fieldError(fe))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return !f.IsZero()
	}
	return strings.TrimSpace(f.String()) != ""
}

func (val *Validator) publicationYear(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		year := f.Int()
		return year >= MinPublicationYear && year <= int64(val.now().Year())
	default:
		return false
	}
}

// fieldError converts a single FieldError into a human-readable message.
func (val *Validator) fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and %d", field, MinPublicationYear, val.now().Year())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
