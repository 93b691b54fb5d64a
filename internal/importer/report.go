package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

// reportHeaders are the columns of the downloadable error report.
var reportHeaders = []string{"Row", "Field", "Error Message"}

const reportSheetName = "Errors"

// Compile returns the error list ordered for reporting: ascending by row
// number, stable within a row so errors keep their detection order. The
// input is not modified, and compiling the same list twice produces the
// same output.
func Compile(errs []models.ImportRowError) []models.ImportRowError {
	compiled := make([]models.ImportRowError, len(errs))
	copy(compiled, errs)
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Row < compiled[j].Row
	})
	return compiled
}

// WriteReportCSV writes the compiled error report as CSV.
func WriteReportCSV(w io.Writer, errs []models.ImportRowError) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(reportHeaders); err != nil {
		return err
	}
	for _, rowErr := range Compile(errs) {
		if err := writer.Write([]string{strconv.Itoa(rowErr.Row), rowErr.Field, rowErr.Message}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReportXLSX writes the compiled error report as an Excel workbook.
func WriteReportXLSX(w io.Writer, errs []models.ImportRowError) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", reportSheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C0392B"}, Pattern: 1},
	})

	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reportSheetName, cell, header)
		f.SetCellStyle(reportSheetName, cell, cell, headerStyle)
	}
	f.SetColWidth(reportSheetName, "A", "A", 8)
	f.SetColWidth(reportSheetName, "B", "B", 22)
	f.SetColWidth(reportSheetName, "C", "C", 70)

	for i, rowErr := range Compile(errs) {
		row := i + 2
		f.SetCellValue(reportSheetName, fmt.Sprintf("A%d", row), rowErr.Row)
		f.SetCellValue(reportSheetName, fmt.Sprintf("B%d", row), rowErr.Field)
		f.SetCellValue(reportSheetName, fmt.Sprintf("C%d", row), rowErr.Message)
	}

	return f.Write(w)
}

// ParseReportCSV reads an exported CSV error report back into row error
// triples. Exporting and re-reading a report reproduces the same
// (row, field, message) values.
func ParseReportCSV(r io.Reader) ([]models.ImportRowError, error) {
	reader := csv.NewReader(r)

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	var errs []models.ImportRowError
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("malformed report record: %v", record)
		}
		rowNum, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid row number '%s': %w", record[0], err)
		}
		errs = append(errs, models.ImportRowError{Row: rowNum, Field: record[1], Message: record[2]})
	}

	return errs, nil
}
