package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX_ReadBack(t *testing.T) {
	var row Row
	row.Set("ID", int64(1))
	row.Set("Filename", "invoice.pdf")
	row.Set("Extracted_Total_Amount", 150.0)
	row.Set("Extracted_Total_Currency", "USD")

	data, err := WriteXLSX([]Row{row})
	if err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Documents" {
		t.Fatalf("sheets = %v, want [Documents]", sheets)
	}

	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want header + 1 row", len(rows))
	}

	header := rows[0]
	if header[0] != "ID" || header[1] != "Filename" {
		t.Errorf("header = %v", header)
	}
	cells := rows[1]
	if cells[0] != "1" || cells[1] != "invoice.pdf" || cells[2] != "150" || cells[3] != "USD" {
		t.Errorf("data row = %v", cells)
	}
}
