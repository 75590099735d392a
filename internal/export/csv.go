package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes rows as delimited text: a header row unioning all column
// names in first-seen order, then one data row per record with missing cells
// left empty.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	headers := Headers(rows)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	line := make([]string, len(headers))
	for _, row := range rows {
		for i, col := range headers {
			v, ok := row.Get(col)
			if !ok {
				line[i] = ""
				continue
			}
			line[i] = formatCell(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatCell renders one cell value as text.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
