package validation

import (
	"strings"

	"katalog/internal/models"
)

const msgNotNull = "must not be null"

// rule is one entry of the product constraint table. When value reports the field
// as absent, the rule fails only if required; otherwise tag is checked against the value.
type rule struct {
	field    FieldName
	required bool
	value    func(p *models.Product) (any, bool)
	tag      string
	message  string
}

func productRules() []rule {
	return []rule{
		{
			field:    FieldTitle,
			required: true,
			value:    optional(func(p *models.Product) *string { return p.Title }),
			tag:      "min=3,max=100",
			message:  "size must be between 3 and 100",
		},
		{
			field:   FieldKeywords,
			value:   optional(func(p *models.Product) *string { return p.Keywords }),
			tag:     "max=200",
			message: "size must be at most 200",
		},
		{
			field:   FieldDescription,
			value:   optional(func(p *models.Product) *string { return p.Description }),
			tag:     "min=50",
			message: "size must be at least 50",
		},
		{
			field:   FieldRating,
			value:   optional(func(p *models.Product) *int { return p.Rating }),
			tag:     "min=1,max=10",
			message: "must be between 1 and 10",
		},
		{
			field:   FieldQuantityInStock,
			value:   func(p *models.Product) (any, bool) { return p.QuantityInStock, true },
			tag:     "gte=0",
			message: "must be greater than or equal to 0",
		},
		{
			field:   FieldDimensions,
			value:   optional(func(p *models.Product) *string { return p.Dimensions }),
			tag:     "max=50",
			message: "size must be at most 50",
		},
		{
			field:    FieldPrice,
			required: true,
			value:    func(p *models.Product) (any, bool) { return derefAny(p.Price) },
			tag:      "decimal_gte=1.00,decimal_lte=9999.00,decimal_scale=2",
			message:  "must be between 1.00 and 9999.00 with at most two decimal places",
		},
		{
			field:    FieldStatus,
			required: true,
			value: func(p *models.Product) (any, bool) {
				return string(p.Status), p.Status != ""
			},
			tag:     "oneof=" + strings.Join(statusNames(), " "),
			message: "must be one of " + strings.Join(statusNames(), ", "),
		},
		{
			field:   FieldWeight,
			value:   optional(func(p *models.Product) *float64 { return p.Weight }),
			tag:     "gte=0",
			message: "must be greater than or equal to 0.00",
		},
		{
			field:    FieldDateAdded,
			required: true,
			value:    func(p *models.Product) (any, bool) { return derefAny(p.DateAdded) },
		},
	}
}

func optional[T any](get func(p *models.Product) *T) func(p *models.Product) (any, bool) {
	return func(p *models.Product) (any, bool) {
		return derefAny(get(p))
	}
}

func derefAny[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func statusNames() []string {
	statuses := models.ProductStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}
