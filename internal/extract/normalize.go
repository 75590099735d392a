package extract

import (
	"fmt"

	"findoc/internal/docintel"
)

// Normalize converts an analyze result into the canonical record shape: the
// full OCR text plus a flat field mapping. It never fails on malformed input;
// whatever could be recovered is returned, possibly empty on both sides.
//
// Fields come from the first of three sources that yields anything:
// recognized-document fields, then key/value pairs, then table dimensions.
// Later sources are consulted only when the earlier ones produced nothing.
func Normalize(res *docintel.AnalyzeResult) (string, map[string]FieldValue) {
	if res == nil {
		return "", map[string]FieldValue{}
	}

	fields := documentFields(res)
	if len(fields) == 0 {
		fields = keyValuePairs(res)
	}
	if len(fields) == 0 {
		fields = tableStats(res)
	}

	return res.Content, fields
}

// documentFields extracts the typed field mapping of the first recognized
// document. Fields with no value are skipped; currency fields missing either
// sub-part degrade to their textual rendering instead of being dropped.
func documentFields(res *docintel.AnalyzeResult) map[string]FieldValue {
	fields := map[string]FieldValue{}
	if len(res.Documents) == 0 {
		return fields
	}

	doc := res.Documents[0]
	for name, f := range doc.Fields {
		val, ok := f.Value()
		if !ok {
			continue
		}

		switch f.Type {
		case "currency":
			if c := f.ValueCurrency; c != nil && c.Amount != nil && c.CurrencyCode != "" {
				fields[name] = Currency{Amount: *c.Amount, CurrencyCode: c.CurrencyCode}
			} else {
				fields[name] = Scalar{Value: f.Text()}
			}
		case "date":
			fields[name] = Scalar{Value: f.Text()}
		default:
			fields[name] = Scalar{Value: val}
		}
	}
	return fields
}

// keyValuePairs extracts the generic key/value entries, skipping any pair
// missing either side. The value's content text is preferred; pairs whose
// value has no content are rendered through the element itself.
func keyValuePairs(res *docintel.AnalyzeResult) map[string]FieldValue {
	fields := map[string]FieldValue{}
	for _, kv := range res.KeyValuePairs {
		if kv.Key == nil || kv.Value == nil {
			continue
		}
		fields[kv.Key.Content] = Scalar{Value: kv.Value.Content}
	}
	return fields
}

// tableStats emits two synthetic fields per table so an export still shows
// that something was parsed when no richer signal exists.
func tableStats(res *docintel.AnalyzeResult) map[string]FieldValue {
	fields := map[string]FieldValue{}
	for i, table := range res.Tables {
		fields[fmt.Sprintf("Table_%d_row_count", i)] = Scalar{Value: table.RowCount}
		fields[fmt.Sprintf("Table_%d_column_count", i)] = Scalar{Value: table.ColumnCount}
	}
	return fields
}
