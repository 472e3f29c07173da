// Package validation checks Product records against the catalog's field rules.
//
// Every rule is evaluated on every call and all failures are reported together.
// Rules live in an explicit table (rules.go); go-playground/validator evaluates
// each rule's tag against the single field value it applies to.
package validation

import (
	"reflect"
	"strconv"

	"katalog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator evaluates the product rule table. It holds no per-call state and
// is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	rules    []rule
}

// New creates a Validator with the decimal comparison and scale tags registered.
func New() *Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalString, decimal.Decimal{})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("decimal_gte", decimalBound(decimal.Decimal.GreaterThanOrEqual))
	_ = v.RegisterValidation("decimal_lte", decimalBound(decimal.Decimal.LessThanOrEqual))
	_ = v.RegisterValidation("decimal_scale", decimalScale)

	return &Validator{
		validate: v,
		rules:    productRules(),
	}
}

var defaultValidator = New()

// Validate checks p with the shared default Validator.
func Validate(p *models.Product) Violations {
	return defaultValidator.Validate(p)
}

// Validate returns every violation found on p, in rule order. A nil p is
// treated as an empty record.
func (v *Validator) Validate(p *models.Product) Violations {
	if p == nil {
		p = &models.Product{}
	}

	var violations Violations
	for _, r := range v.rules {
		value, present := r.value(p)
		if !present {
			if r.required {
				violations = append(violations, Violation{Field: r.field, Message: msgNotNull})
			}
			continue
		}
		if r.tag == "" {
			continue
		}
		if err := v.validate.Var(value, r.tag); err != nil {
			violations = append(violations, Violation{Field: r.field, Message: r.message})
		}
	}
	return violations
}

// decimalString exposes a decimal to the validator as its exact string form.
func decimalString(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalBound(cmp func(value, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(value, bound)
	}
}

// decimalScale accepts values with no more significant fractional digits than
// the tag parameter; trailing zeros do not count.
func decimalScale(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil || places < 0 {
		return false
	}
	return value.Equal(value.Truncate(int32(places)))
}
