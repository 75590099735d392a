package docintel

import (
	"fmt"
	"strconv"
)

// AnalyzeResult is the subset of a Document Intelligence analyze result the
// application consumes. Depending on the model, any of Documents,
// KeyValuePairs, or Tables may be empty; Content holds the full OCR text.
type AnalyzeResult struct {
	Content       string         `json:"content"`
	Documents     []Document     `json:"documents"`
	KeyValuePairs []KeyValuePair `json:"keyValuePairs"`
	Tables        []Table        `json:"tables"`
}

// Document is one recognized document instance with its typed field mapping.
type Document struct {
	DocType string           `json:"docType"`
	Fields  map[string]Field `json:"fields"`
}

// Field is a single extracted field. Type carries the service's value-type
// tag ("currency", "date", "string", "number", ...); at most one of the
// Value* members is populated, and Content holds the field's source text.
type Field struct {
	Type          string         `json:"type"`
	Content       string         `json:"content"`
	ValueString   *string        `json:"valueString,omitempty"`
	ValueNumber   *float64       `json:"valueNumber,omitempty"`
	ValueDate     *string        `json:"valueDate,omitempty"`
	ValueCurrency *CurrencyValue `json:"valueCurrency,omitempty"`
}

// CurrencyValue is the structured value of a currency-typed field. Amount is
// a pointer because the service omits it when it could not read a number.
type CurrencyValue struct {
	Amount       *float64 `json:"amount,omitempty"`
	CurrencyCode string   `json:"currencyCode,omitempty"`
}

// KeyValuePair is one entry of the generic key/value extraction. Either side
// may be nil when the service found only half of a pair.
type KeyValuePair struct {
	Key   *KVElement `json:"key"`
	Value *KVElement `json:"value"`
}

// KVElement is one side of a key/value pair.
type KVElement struct {
	Content string `json:"content"`
}

// Table carries only the dimensions; cell contents are not consumed.
type Table struct {
	RowCount    int `json:"rowCount"`
	ColumnCount int `json:"columnCount"`
}

// Value returns the typed value of the field and whether one is present.
// A field with no Value* member and no content text counts as absent.
func (f Field) Value() (any, bool) {
	switch {
	case f.ValueCurrency != nil:
		return f.ValueCurrency, true
	case f.ValueNumber != nil:
		return *f.ValueNumber, true
	case f.ValueString != nil:
		return *f.ValueString, true
	case f.ValueDate != nil:
		return *f.ValueDate, true
	case f.Content != "":
		return f.Content, true
	}
	return nil, false
}

// Text renders the field's value as text, preferring the source content.
func (f Field) Text() string {
	if f.Content != "" {
		return f.Content
	}
	v, ok := f.Value()
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *CurrencyValue:
		if val.Amount != nil {
			return strconv.FormatFloat(*val.Amount, 'f', -1, 64) + " " + val.CurrencyCode
		}
		return val.CurrencyCode
	default:
		return fmt.Sprintf("%v", v)
	}
}
