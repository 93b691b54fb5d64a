package importer

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"catalog-service/internal/models"
)

// Error codes attached to row errors so callers can branch without
// string-matching messages.
const (
	CodeRequired        = "REQUIRED"
	CodeInvalid         = "INVALID"
	CodePartialDims     = "PARTIAL_DIMENSIONS"
	CodeDuplicateInFile = "DUPLICATE_IN_FILE"
	CodeSlugExists      = "SLUG_EXISTS"
	CodeCatalogNotFound = "CATALOG_NOT_FOUND"
)

var (
	truthyTokens = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "active": true}
	falsyTokens  = map[string]bool{"false": true, "0": true, "no": true, "n": true, "inactive": true}

	dimensionUnits = map[string]bool{"mm": true, "cm": true, "m": true, "in": true}
)

// ValidatedRow is the typed result of schema validation for one row.
// CatalogName is carried through unresolved; the resolver turns it into
// an identifier at a later stage.
type ValidatedRow struct {
	Name             string
	Slug             string
	Description      *string
	ShortDescription *string
	BasePrice        decimal.Decimal
	IsActive         bool
	CatalogName      string
	Dimensions       *models.Dimensions
}

// RowValidator validates decoded rows against the product import schema.
// It is a pure function over the row: no I/O, no shared state.
type RowValidator struct{}

// NewRowValidator returns a RowValidator.
func NewRowValidator() *RowValidator {
	return &RowValidator{}
}

// Validate checks one raw row against the field schema and business
// rules. Every schema violation on the row is collected before
// returning; a row can surface more than one error. When the returned
// error list is non-empty the ValidatedRow is nil and later stages
// (duplicate check, catalog resolution) must be skipped for the row.
func (v *RowValidator) Validate(row RawRow) (*ValidatedRow, []models.ImportRowError) {
	rowNum := row.SourceRowNumber()
	var errs []models.ImportRowError

	addError := func(field, code, message string) {
		errs = append(errs, models.ImportRowError{Row: rowNum, Field: field, Code: code, Message: message})
	}

	name := row.Get(ColName)
	if name == "" {
		addError(ColName, CodeRequired, "Product name is required")
	}

	slugValue := strings.ToLower(row.Get(ColSlug))
	if slugValue == "" {
		addError(ColSlug, CodeRequired, "Slug is required")
	} else if !slug.IsSlug(slugValue) {
		addError(ColSlug, CodeInvalid, fmt.Sprintf("'%s' is not a valid slug (lowercase letters, digits and hyphens only)", slugValue))
	}

	var basePrice decimal.Decimal
	if priceValue := row.Get(ColBasePrice); priceValue == "" {
		addError(ColBasePrice, CodeRequired, "Base price is required")
	} else if parsed, err := decimal.NewFromString(priceValue); err != nil {
		addError(ColBasePrice, CodeInvalid, fmt.Sprintf("'%s' is not a valid decimal price", priceValue))
	} else if parsed.IsNegative() {
		addError(ColBasePrice, CodeInvalid, "Base price must not be negative")
	} else {
		basePrice = parsed
	}

	var isActive bool
	if activeValue := row.Get(ColIsActive); activeValue == "" {
		addError(ColIsActive, CodeRequired, "is_active is required")
	} else {
		token := strings.ToLower(activeValue)
		switch {
		case truthyTokens[token]:
			isActive = true
		case falsyTokens[token]:
			isActive = false
		default:
			addError(ColIsActive, CodeInvalid, fmt.Sprintf("'%s' is not a recognized boolean value", activeValue))
		}
	}

	dims, dimErrs := v.validateDimensions(row, rowNum)
	errs = append(errs, dimErrs...)

	if len(errs) > 0 {
		return nil, errs
	}

	return &ValidatedRow{
		Name:             name,
		Slug:             slugValue,
		Description:      optionalString(row.Get(ColDescription)),
		ShortDescription: optionalString(row.Get(ColShortDescription)),
		BasePrice:        basePrice,
		IsActive:         isActive,
		CatalogName:      row.Get(ColCatalogName),
		Dimensions:       dims,
	}, nil
}

// validateDimensions enforces the all-or-none dimension rule. A partial
// set is one error on the synthetic "dimensions" field rather than per
// sub-field, so a malformed 3-of-4 object never reaches storage.
func (v *RowValidator) validateDimensions(row RawRow, rowNum int) (*models.Dimensions, []models.ImportRowError) {
	width := row.Get(ColDimensionsWidth)
	height := row.Get(ColDimensionsHeight)
	depth := row.Get(ColDimensionsDepth)
	unit := row.Get(ColDimensionsUnit)

	present := 0
	for _, cell := range []string{width, height, depth, unit} {
		if cell != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present < 4 {
		return nil, []models.ImportRowError{{
			Row:     rowNum,
			Field:   ColDimensions,
			Code:    CodePartialDims,
			Message: "Dimension fields must be provided together: dimensions_width, dimensions_height, dimensions_depth and dimensions_unit",
		}}
	}

	var errs []models.ImportRowError
	dims := &models.Dimensions{Unit: strings.ToLower(unit)}
	for _, field := range []struct {
		col   string
		value string
		dest  *decimal.Decimal
	}{
		{ColDimensionsWidth, width, &dims.Width},
		{ColDimensionsHeight, height, &dims.Height},
		{ColDimensionsDepth, depth, &dims.Depth},
	} {
		parsed, err := decimal.NewFromString(field.value)
		if err != nil || !parsed.IsPositive() {
			errs = append(errs, models.ImportRowError{
				Row:     rowNum,
				Field:   field.col,
				Code:    CodeInvalid,
				Message: fmt.Sprintf("'%s' is not a valid positive dimension", field.value),
			})
			continue
		}
		*field.dest = parsed
	}

	if !dimensionUnits[dims.Unit] {
		errs = append(errs, models.ImportRowError{
			Row:     rowNum,
			Field:   ColDimensionsUnit,
			Code:    CodeInvalid,
			Message: fmt.Sprintf("'%s' is not a supported dimension unit (mm, cm, m, in)", unit),
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return dims, nil
}

// optionalString returns nil for empty strings, pointer otherwise
func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
