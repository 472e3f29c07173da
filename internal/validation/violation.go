package validation

// FieldName identifies a Product field in a violation report.
type FieldName string

const (
	FieldTitle           FieldName = "title"
	FieldKeywords        FieldName = "keywords"
	FieldDescription     FieldName = "description"
	FieldRating          FieldName = "rating"
	FieldQuantityInStock FieldName = "quantityInStock"
	FieldDimensions      FieldName = "dimensions"
	FieldPrice           FieldName = "price"
	FieldStatus          FieldName = "status"
	FieldWeight          FieldName = "weight"
	FieldDateAdded       FieldName = "dateAdded"
)

// Violation reports one failed constraint on one field.
type Violation struct {
	Field   FieldName `json:"field"`
	Message string    `json:"message"`
}

// Violations is the result of validating a record. An empty result means the record is valid.
type Violations []Violation

// Valid reports whether no constraint failed.
func (vs Violations) Valid() bool {
	return len(vs) == 0
}

// Has reports whether any violation concerns field.
func (vs Violations) Has(field FieldName) bool {
	for _, v := range vs {
		if v.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the offending fields in report order.
func (vs Violations) Fields() []FieldName {
	fields := make([]FieldName, 0, len(vs))
	for _, v := range vs {
		fields = append(fields, v.Field)
	}
	return fields
}

// Messages maps each offending field to its message, for error payloads.
func (vs Violations) Messages() map[string]string {
	messages := make(map[string]string, len(vs))
	for _, v := range vs {
		messages[string(v.Field)] = v.Message
	}
	return messages
}
