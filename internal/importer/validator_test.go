package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRow(index int, cells map[string]string) RawRow {
	return RawRow{Index: index, Cells: cells}
}

func validCells() map[string]string {
	return map[string]string{
		ColName:      "Walnut Side Table",
		ColSlug:      "walnut-side-table",
		ColBasePrice: "149.90",
		ColIsActive:  "true",
	}
}

func TestValidate_ValidMinimalRow(t *testing.T) {
	v := NewRowValidator()

	validated, errs := v.Validate(makeRow(0, validCells()))

	require.Empty(t, errs)
	require.NotNil(t, validated)
	assert.Equal(t, "Walnut Side Table", validated.Name)
	assert.Equal(t, "walnut-side-table", validated.Slug)
	assert.True(t, validated.BasePrice.Equal(decimal.RequireFromString("149.90")))
	assert.True(t, validated.IsActive)
	assert.Nil(t, validated.Description)
	assert.Nil(t, validated.Dimensions)
	assert.Empty(t, validated.CatalogName)
}

func TestValidate_OptionalFields(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColDescription] = "Solid walnut side table."
	cells[ColShortDescription] = "Solid walnut"
	cells[ColCatalogName] = "Living Room"

	validated, errs := v.Validate(makeRow(0, cells))

	require.Empty(t, errs)
	require.NotNil(t, validated.Description)
	assert.Equal(t, "Solid walnut side table.", *validated.Description)
	require.NotNil(t, validated.ShortDescription)
	assert.Equal(t, "Solid walnut", *validated.ShortDescription)
	assert.Equal(t, "Living Room", validated.CatalogName)
}

func TestValidate_MissingName(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	delete(cells, ColName)

	validated, errs := v.Validate(makeRow(0, cells))

	assert.Nil(t, validated)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, ColName, errs[0].Field)
	assert.Equal(t, CodeRequired, errs[0].Code)
}

func TestValidate_CollectsAllErrorsOnRow(t *testing.T) {
	v := NewRowValidator()

	validated, errs := v.Validate(makeRow(3, map[string]string{
		ColSlug:      "Not A Slug!",
		ColBasePrice: "abc",
		ColIsActive:  "maybe",
	}))

	assert.Nil(t, validated)
	require.Len(t, errs, 4)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		assert.Equal(t, 5, e.Row)
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{ColName, ColSlug, ColBasePrice, ColIsActive}, fields)
}

func TestValidate_SlugRules(t *testing.T) {
	v := NewRowValidator()

	tests := []struct {
		slug  string
		valid bool
	}{
		{"walnut-side-table", true},
		{"table-2", true},
		{"WALNUT-TABLE", true}, // lowercased before validation
		{"walnut table", false},
		{"walnut_table", false},
		{"", false},
	}
	for _, tt := range tests {
		cells := validCells()
		cells[ColSlug] = tt.slug
		_, errs := v.Validate(makeRow(0, cells))
		if tt.valid {
			assert.Emptyf(t, errs, "slug %q should be accepted", tt.slug)
		} else {
			assert.NotEmptyf(t, errs, "slug %q should be rejected", tt.slug)
		}
	}
}

func TestValidate_SlugLowercased(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColSlug] = "WALNUT-Side-Table"

	validated, errs := v.Validate(makeRow(0, cells))

	require.Empty(t, errs)
	assert.Equal(t, "walnut-side-table", validated.Slug)
}

func TestValidate_NegativePrice(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColBasePrice] = "-5.00"

	validated, errs := v.Validate(makeRow(0, cells))

	assert.Nil(t, validated)
	require.Len(t, errs, 1)
	assert.Equal(t, ColBasePrice, errs[0].Field)
	assert.Equal(t, CodeInvalid, errs[0].Code)
}

func TestValidate_ZeroPriceAllowed(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColBasePrice] = "0"

	validated, errs := v.Validate(makeRow(0, cells))

	require.Empty(t, errs)
	assert.True(t, validated.BasePrice.IsZero())
}

func TestValidate_BooleanTokens(t *testing.T) {
	v := NewRowValidator()

	truthy := []string{"true", "TRUE", "1", "yes", "Y", "active"}
	falsy := []string{"false", "0", "no", "N", "inactive"}

	for _, token := range truthy {
		cells := validCells()
		cells[ColIsActive] = token
		validated, errs := v.Validate(makeRow(0, cells))
		require.Emptyf(t, errs, "token %q should parse", token)
		assert.Truef(t, validated.IsActive, "token %q should be truthy", token)
	}
	for _, token := range falsy {
		cells := validCells()
		cells[ColIsActive] = token
		validated, errs := v.Validate(makeRow(0, cells))
		require.Emptyf(t, errs, "token %q should parse", token)
		assert.Falsef(t, validated.IsActive, "token %q should be falsy", token)
	}
}

func TestValidate_FullDimensions(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColDimensionsWidth] = "45"
	cells[ColDimensionsHeight] = "52.5"
	cells[ColDimensionsDepth] = "45"
	cells[ColDimensionsUnit] = "CM"

	validated, errs := v.Validate(makeRow(0, cells))

	require.Empty(t, errs)
	require.NotNil(t, validated.Dimensions)
	assert.True(t, validated.Dimensions.Width.Equal(decimal.NewFromInt(45)))
	assert.True(t, validated.Dimensions.Height.Equal(decimal.RequireFromString("52.5")))
	assert.Equal(t, "cm", validated.Dimensions.Unit)
}

func TestValidate_PartialDimensionsSingleError(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColDimensionsWidth] = "45"
	cells[ColDimensionsHeight] = "52"
	// depth and unit missing

	validated, errs := v.Validate(makeRow(7, cells))

	assert.Nil(t, validated)
	require.Len(t, errs, 1)
	assert.Equal(t, 9, errs[0].Row)
	assert.Equal(t, ColDimensions, errs[0].Field)
	assert.Equal(t, CodePartialDims, errs[0].Code)
}

func TestValidate_DimensionValueAndUnitErrors(t *testing.T) {
	v := NewRowValidator()
	cells := validCells()
	cells[ColDimensionsWidth] = "0"
	cells[ColDimensionsHeight] = "52"
	cells[ColDimensionsDepth] = "xyz"
	cells[ColDimensionsUnit] = "furlong"

	validated, errs := v.Validate(makeRow(0, cells))

	assert.Nil(t, validated)
	require.Len(t, errs, 3)
	fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
	assert.ElementsMatch(t, []string{ColDimensionsWidth, ColDimensionsDepth, ColDimensionsUnit}, fields)
}
