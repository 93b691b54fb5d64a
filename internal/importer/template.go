package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

// WriteTemplateCSV writes the import template headers as CSV.
func WriteTemplateCSV(w io.Writer, template models.ImportTemplate) error {
	writer := csv.NewWriter(w)

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// WriteTemplateXLSX writes a styled Excel template: a Products sheet
// with marked required columns and an example row, plus an Instructions
// sheet describing every column.
func WriteTemplateXLSX(w io.Writer, template models.ImportTemplate) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", productSheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(productSheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(productSheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(productSheetName, cell, cell, headerStyle)
		}

		// Example row so users can see the expected value shapes
		exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(productSheetName, exampleCell, col.Example)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(productSheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")

	f.SetCellValue("Instructions", "A3", "RULES:")
	f.SetCellValue("Instructions", "A4", "- Columns marked * are required on every row.")
	f.SetCellValue("Instructions", "A5", "- slug must be unique across the store and within this file.")
	f.SetCellValue("Instructions", "A6", "- catalog_name must match an existing leaf catalog exactly (case does not matter). Leave empty to import uncategorized.")
	f.SetCellValue("Instructions", "A7", "- The four dimensions_* columns must be filled together or left empty together.")
	f.SetCellValue("Instructions", "A8", "- Invalid rows are skipped and reported; valid rows from the same file are still imported.")

	f.SetCellValue("Instructions", "A10", "Column Definitions:")
	f.SetCellValue("Instructions", "A11", "Column")
	f.SetCellValue("Instructions", "B11", "Description")
	f.SetCellValue("Instructions", "C11", "Required")
	f.SetCellValue("Instructions", "D11", "Type")
	f.SetCellValue("Instructions", "E11", "Example")

	for i, col := range template.Columns {
		row := i + 12
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 22)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 12)
	f.SetColWidth("Instructions", "D", "D", 12)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(productSheetName)
	f.SetActiveSheet(sheetIdx)

	return f.Write(w)
}
