// internal/common/validation/structs.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"atio-knowledge-base/internal/matching"
	"atio-knowledge-base/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed struct constraint.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// StructError collects every failed constraint of one struct.
type StructError struct {
	Fields []FieldError
}

func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator with the catalog rules
// registered. Field names in errors come from json tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister("category", func(fl validator.FieldLevel) bool {
			return oneOf(models.Category(fl.Field().String()), models.Categories)
		})
		mustRegister("cost", func(fl validator.FieldLevel) bool {
			return oneOf(models.Cost(fl.Field().String()), models.Costs)
		})
		mustRegister("maturity", func(fl validator.FieldLevel) bool {
			return oneOf(models.MaturityLevel(fl.Field().String()), models.MaturityLevels)
		})
		mustRegister("adoption_rate", func(fl validator.FieldLevel) bool {
			text := fl.Field().String()
			if text == "N/A" {
				return true
			}
			_, ok := matching.ParseAdoptionRate(text)
			return ok
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

func oneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// ValidateStruct returns nil or a *StructError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &StructError{Fields: fields}
}

var messageTemplates = map[string]string{
	"required":      "%s is required",
	"url":           "%s must be a valid URL",
	"category":      "%s must be a known technology category",
	"cost":          "%s must be Low, Medium or High",
	"maturity":      "%s must be Emerging, Proven or Mature",
	"adoption_rate": "%s must start with a number or be N/A",
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}

	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
