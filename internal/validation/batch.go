package validation

import "katalog/internal/models"

// Result is the outcome of validating one record of a batch.
type Result struct {
	Index      int        `json:"index"`
	Violations Violations `json:"violations,omitempty"`
}

// Report collects the results of validating a batch, one per record, in input order.
type Report struct {
	Results []Result `json:"results"`
}

// ValidateAll validates every record independently. Nothing is short-circuited:
// an invalid record does not stop the records after it from being checked.
func (v *Validator) ValidateAll(products []models.Product) Report {
	report := Report{Results: make([]Result, len(products))}
	for i := range products {
		report.Results[i] = Result{Index: i, Violations: v.Validate(&products[i])}
	}
	return report
}

// Valid reports whether every record in the batch is valid.
func (r Report) Valid() bool {
	return len(r.Invalid()) == 0
}

// Invalid returns the results that carry violations.
func (r Report) Invalid() []Result {
	var invalid []Result
	for _, res := range r.Results {
		if !res.Violations.Valid() {
			invalid = append(invalid, res)
		}
	}
	return invalid
}
