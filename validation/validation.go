// Package validation turns request validation failures into a field → code map.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var validate *validator.Validate

const notBlankTag = "notblank"

func init() {
	validate = validator.New()

	// report JSON field names rather than Go struct names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return true
	})
}

// Struct checks the `validate` tags of s and adds one violation per failing field.
func Struct(s any, v Violations) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v["_"] = "invalid"
		return
	}
	for _, fe := range fieldErrs {
		v[fieldName(fe)] = code(fe)
	}
}

// fieldName strips the top-level struct name: "createInvoiceRequest.due_date" → "due_date".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "required"
	case "gt", "gte", "min":
		return "too_small"
	case "lt", "lte", "max":
		return "too_large"
	case "oneof":
		return "invalid_choice"
	case "email":
		return "invalid_email"
	default:
		return "invalid"
	}
}

// RangeFloat records out_of_range for field when val is outside [minVal, maxVal].
func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}
