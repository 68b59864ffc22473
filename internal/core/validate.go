package core

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// Money and Date are validated through their text form.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if m, ok := field.Interface().(Money); ok {
				return m.Decimal.String()
			}
			return nil
		}, Money{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(Date); ok {
				return d.String()
			}
			return nil
		}, Date{})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("amount", validateAmount)
		_ = v.RegisterValidation("maxbytes", validateMaxBytes)
		validate = v
	})
	return validate
}

// validateAmount checks a decimal field against a minimum given as the tag
// parameter, and that it fits NUMERIC(15,2).
func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if (Money{Decimal: d}).CheckPrecision() != nil {
		return false
	}
	min, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(min)
}

// validateMaxBytes bounds the UTF-8 byte length of a string, where max
// counts runes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate runs struct tag validation and returns a Validation error whose
// Fields are keyed by JSON name.
func Validate(in any) error {
	err := validatorInstance().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return Validation("Validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	case "max":
		return "size must be at most " + fe.Param()
	case "maxbytes":
		return "size must be at most " + fe.Param() + " bytes"
	case "min":
		return "size must be at least " + fe.Param()
	case "amount":
		return fmt.Sprintf("must be a decimal >= %s with at most %d integer and %d fraction digits",
			fe.Param(), MoneyIntegerDigits, MoneyScale)
	default:
		return "is invalid"
	}
}
