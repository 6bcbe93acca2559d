// Package validation checks decoded request bodies against their struct tags
// (required, min, max, oneof, email) and reports every violation at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/yelpcamp-go/apperror"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name, which is also the form field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s. On failure it returns a ValidationError whose message
// joins one line per violated field with ",", e.g.
//
//	"title" is required,"price" must be greater than or equal to 0
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewInternalError("could not validate input", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return apperror.NewValidationError(strings.Join(msgs, ","), nil)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
		}
		return fmt.Sprintf("%q must be at least %s characters long", field, fe.Param())
	case "max":
		if isNumber(fe.Kind()) {
			return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
		}
		return fmt.Sprintf("%q must be at most %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
