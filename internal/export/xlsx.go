package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Necesidades"

func XLSXFileName(date string) string {
	return "necesidades_diarias_" + date + ".xlsx"
}

// WriteXLSX renders the same table as WriteCSV into a workbook with a title
// row above the header.
func WriteXLSX(w io.Writer, date string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", "Necesidades diarias "+date)
	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rows {
		for col, v := range r.Fields() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+3)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("error writing cell %s: %w", cell, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 15)
	_ = f.SetColWidth(sheetName, "C", lastCol, 30)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error saving workbook: %w", err)
	}
	return nil
}
