package importer

// headerRowOffset converts a zero-based data row index into the 1-based
// row number a user sees in their spreadsheet: +1 for the header row and
// +1 for 1-based display.
const headerRowOffset = 2

// Known column keys, normalized to lowercase at the decode boundary.
const (
	ColName             = "name"
	ColSlug             = "slug"
	ColBasePrice        = "base_price"
	ColIsActive         = "is_active"
	ColDescription      = "description"
	ColShortDescription = "short_description"
	ColCatalogName      = "catalog_name"
	ColDimensionsWidth  = "dimensions_width"
	ColDimensionsHeight = "dimensions_height"
	ColDimensionsDepth  = "dimensions_depth"
	ColDimensionsUnit   = "dimensions_unit"
	// ColDimensions is never a spreadsheet column; it is the field
	// errors about a malformed dimension set are attributed to.
	ColDimensions = "dimensions"
)

// RawRow is one decoded spreadsheet row: the zero-based data index plus
// a mapping from known column keys to trimmed cell values. Typing the
// decoder output here keeps untyped maps out of the validator.
type RawRow struct {
	Index int
	Cells map[string]string
}

// Get returns the cell value for a column key, or "" when absent.
func (r RawRow) Get(key string) string {
	return r.Cells[key]
}

// SourceRowNumber returns the 1-based spreadsheet row number used in
// error reports.
func (r RawRow) SourceRowNumber() int {
	return SourceRowNumber(r.Index)
}

// SourceRowNumber maps a zero-based data row index to its spreadsheet
// row number.
func SourceRowNumber(index int) int {
	return index + headerRowOffset
}
