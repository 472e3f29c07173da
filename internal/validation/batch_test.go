package validation_test

import (
	"testing"

	"katalog/internal/models"
	"katalog/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll(t *testing.T) {
	valid := *newProductSample()
	shortTitle := *newProductSample()
	shortTitle.Title = ptr("AB")
	noPrice := *newProductSample()
	noPrice.Price = nil

	report := validation.New().ValidateAll([]models.Product{shortTitle, valid, noPrice})

	require.Len(t, report.Results, 3)
	assert.False(t, report.Valid())
	for i, res := range report.Results {
		assert.Equal(t, i, res.Index)
	}
	assert.True(t, report.Results[0].Violations.Has(validation.FieldTitle))
	assert.True(t, report.Results[1].Violations.Valid())
	assert.True(t, report.Results[2].Violations.Has(validation.FieldPrice))

	invalid := report.Invalid()
	require.Len(t, invalid, 2)
	assert.Equal(t, 0, invalid[0].Index)
	assert.Equal(t, 2, invalid[1].Index)
}

func TestValidateAll_AllValid(t *testing.T) {
	report := validation.New().ValidateAll([]models.Product{*newProductSample(), *newProductSample()})
	assert.True(t, report.Valid())
	assert.Empty(t, report.Invalid())
}

func TestValidateAll_Empty(t *testing.T) {
	report := validation.New().ValidateAll(nil)
	assert.True(t, report.Valid())
	assert.Empty(t, report.Results)
}
