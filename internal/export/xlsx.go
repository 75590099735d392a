package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Documents"

// WriteXLSX returns an XLSX workbook holding the same projection as the CSV
// export: one sheet, a header row, one data row per record.
func WriteXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headers := Headers(rows)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for r, row := range rows {
		for c, col := range headers {
			v, ok := row.Get(col)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			switch val := v.(type) {
			case string, float64, int, int64, bool:
				_ = f.SetCellValue(sheetName, cell, val)
			default:
				_ = f.SetCellValue(sheetName, cell, formatCell(v))
			}
		}
	}

	// Widen the identity columns a little.
	_ = f.SetColWidth(sheetName, "B", "B", 32) // filename
	_ = f.SetColWidth(sheetName, "C", "C", 22) // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
