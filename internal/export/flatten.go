// Package export projects stored document records into a flat tabular shape
// for CSV and XLSX downloads.
package export

import (
	"sort"
	"time"
	"unicode/utf8"

	"findoc/internal/extract"
	"findoc/internal/storage"
)

// rawTextPreviewLimit is the number of characters of OCR text included in
// the preview column before truncation.
const rawTextPreviewLimit = 500

// Row is one export row: a flat column→value mapping that remembers the
// order columns were added in.
type Row struct {
	columns []string
	values  map[string]any
}

// Set adds or replaces a cell. First insertion fixes the column's position.
func (r *Row) Set(col string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = v
}

// Get returns a cell value and whether the column exists in this row.
func (r *Row) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Columns returns this row's column names in insertion order.
func (r *Row) Columns() []string {
	return r.columns
}

// Headers unions the column names of all rows in first-seen order. Rows may
// carry different column sets; missing cells render empty downstream.
func Headers(rows []Row) []string {
	var headers []string
	seen := map[string]bool{}
	for _, row := range rows {
		for _, col := range row.columns {
			if !seen[col] {
				seen[col] = true
				headers = append(headers, col)
			}
		}
	}
	return headers
}

// Flatten converts records into export rows. Each record contributes its
// fixed columns, one or two Extracted_* columns per decoded field, and a
// truncated raw-text preview. A record whose structured_data blob fails to
// decode gets a sentinel error column instead of field columns; the failure
// never affects other rows.
func Flatten(records []storage.DocumentRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, flattenRecord(rec))
	}
	return rows
}

func flattenRecord(rec storage.DocumentRecord) Row {
	var row Row
	row.Set("ID", rec.ID)
	row.Set("Filename", rec.Filename)
	row.Set("Upload_Timestamp", rec.UploadTimestamp.Format(time.RFC3339))
	row.Set("Model_Type", rec.ModelType)
	row.Set("File_Size_Bytes", rec.FileSize)
	row.Set("Raw_Text_Length", utf8.RuneCountInString(rec.RawText))

	fields, err := extract.DecodeFields([]byte(rec.StructuredData))
	if err != nil {
		row.Set("Structured_Data_Error", "JSON parsing failed")
	} else {
		for _, name := range sortedNames(fields) {
			setFieldColumns(&row, name, fields[name])
		}
	}

	row.Set("Raw_Text_Preview", preview(rec.RawText))
	return row
}

func setFieldColumns(row *Row, name string, fv extract.FieldValue) {
	switch v := fv.(type) {
	case extract.Currency:
		row.Set("Extracted_"+name+"_Amount", v.Amount)
		row.Set("Extracted_"+name+"_Currency", v.CurrencyCode)
	case extract.Scalar:
		switch v.Value.(type) {
		case map[string]any, []any:
			row.Set("Extracted_"+name, formatCell(v.Value))
		default:
			row.Set("Extracted_"+name, v.Value)
		}
	}
}

// sortedNames gives the Extracted_* columns a stable order; the stored
// mapping itself is unordered.
func sortedNames(fields map[string]extract.FieldValue) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > rawTextPreviewLimit {
		return string(runes[:rawTextPreviewLimit]) + "..."
	}
	return text
}
