package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Input-shape errors: the upload never reaches the pipeline, no job is
// created for it.
var (
	ErrNoSheet   = errors.New("no sheets found in file")
	ErrEmptyFile = errors.New("file contains no data rows")
)

// productSheetName is preferred when an XLSX file has multiple sheets
// (the template generator names its data sheet this way).
const productSheetName = "Products"

// DecodeCSV parses a CSV stream into ordered raw rows. The first record
// is treated as the header; header names are normalized to lowercase
// with the template's required marker stripped.
func DecodeCSV(file io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", len(rows)+headerRowOffset, err)
		}
		rows = append(rows, buildRow(len(rows), headers, record))
	}

	return rows, nil
}

// DecodeXLSX parses an Excel stream into ordered raw rows, preferring
// the "Products" sheet when present.
func DecodeXLSX(file io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, productSheetName) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	rows := make([]RawRow, 0, len(excelRows)-1)
	for i, excelRow := range excelRows[1:] {
		rows = append(rows, buildRow(i, headers, excelRow))
	}

	return rows, nil
}

func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func buildRow(index int, headers, record []string) RawRow {
	cells := make(map[string]string, len(headers))
	for i, value := range record {
		if i < len(headers) && headers[i] != "" {
			cells[headers[i]] = strings.TrimSpace(value)
		}
	}
	return RawRow{Index: index, Cells: cells}
}
