package extract

import (
	"encoding/json"
	"fmt"
)

// EncodeFields serializes a field mapping into the JSON blob stored in the
// structured_data column. Currency values become {"value": amount,
// "currency": code} objects; scalars are written as bare JSON values.
func EncodeFields(fields map[string]FieldValue) ([]byte, error) {
	out := make(map[string]any, len(fields))
	for name, fv := range fields {
		switch v := fv.(type) {
		case Currency:
			out[name] = map[string]any{"value": v.Amount, "currency": v.CurrencyCode}
		case Scalar:
			out[name] = v.Value
		default:
			return nil, fmt.Errorf("unknown field value type %T for %q", fv, name)
		}
	}
	return json.Marshal(out)
}

// DecodeFields parses a stored structured_data blob back into the field
// mapping. Objects carrying both a "value" number and a "currency" string are
// recognized as Currency; everything else comes back as a Scalar, including
// composite objects, which callers render textually.
func DecodeFields(blob []byte) (map[string]FieldValue, error) {
	if len(blob) == 0 {
		return map[string]FieldValue{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("decoding structured data: %w", err)
	}

	fields := make(map[string]FieldValue, len(raw))
	for name, v := range raw {
		if c, ok := currencyFromAny(v); ok {
			fields[name] = c
			continue
		}
		fields[name] = Scalar{Value: v}
	}
	return fields, nil
}

func currencyFromAny(v any) (Currency, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Currency{}, false
	}
	amountRaw, hasAmount := obj["value"]
	codeRaw, hasCode := obj["currency"]
	if !hasAmount || !hasCode {
		return Currency{}, false
	}
	amount, ok := amountRaw.(float64)
	if !ok {
		return Currency{}, false
	}
	code, ok := codeRaw.(string)
	if !ok {
		return Currency{}, false
	}
	return Currency{Amount: amount, CurrencyCode: code}, true
}
