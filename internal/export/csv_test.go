package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	var a, b Row
	a.Set("ID", int64(1))
	a.Set("Filename", "a.pdf")
	a.Set("Extracted_Total_Amount", 150.0)
	b.Set("ID", int64(2))
	b.Set("Filename", "b.pdf")
	b.Set("Extracted_VendorName", "Acme Corp")

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Row{a, b}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want header + 2 rows", len(records))
	}

	wantHeader := []string{"ID", "Filename", "Extracted_Total_Amount", "Extracted_VendorName"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}
	if !reflect.DeepEqual(records[1], []string{"1", "a.pdf", "150", ""}) {
		t.Errorf("row 1 = %v", records[1])
	}
	if !reflect.DeepEqual(records[2], []string{"2", "b.pdf", "", "Acme Corp"}) {
		t.Errorf("row 2 = %v", records[2])
	}
}

func TestWriteCSV_NoRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	// Just the (empty) header line.
	if got := strings.TrimSpace(buf.String()); got != "" {
		t.Errorf("output = %q, want empty", got)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{150.0, "150"},
		{99.5, "99.5"},
		{int(3), "3"},
		{int64(42), "42"},
		{true, "true"},
		{map[string]any{"value": 10.0}, `{"value":10}`},
		{[]any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		if got := formatCell(tt.in); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
