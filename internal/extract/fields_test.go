package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEncodeFields_CurrencyShape(t *testing.T) {
	blob, err := EncodeFields(map[string]FieldValue{
		"Total": Currency{Amount: 150.0, CurrencyCode: "USD"},
	})
	if err != nil {
		t.Fatalf("EncodeFields() error = %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		t.Fatalf("unmarshalling blob: %v", err)
	}
	if got := raw["Total"]["value"]; got != 150.0 {
		t.Errorf("value = %v, want 150.0", got)
	}
	if got := raw["Total"]["currency"]; got != "USD" {
		t.Errorf("currency = %v, want USD", got)
	}
}

func TestEncodeDecodeFields_RoundTrip(t *testing.T) {
	in := map[string]FieldValue{
		"VendorName": Scalar{Value: "Acme Corp"},
		"Total":      Currency{Amount: 99.5, CurrencyCode: "EUR"},
		"ItemCount":  Scalar{Value: 3.0},
	}

	blob, err := EncodeFields(in)
	if err != nil {
		t.Fatalf("EncodeFields() error = %v", err)
	}
	out, err := DecodeFields(blob)
	if err != nil {
		t.Fatalf("DecodeFields() error = %v", err)
	}

	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestDecodeFields_EmptyBlob(t *testing.T) {
	fields, err := DecodeFields(nil)
	if err != nil {
		t.Fatalf("DecodeFields(nil) error = %v", err)
	}
	if fields == nil || len(fields) != 0 {
		t.Errorf("fields = %v, want empty non-nil map", fields)
	}
}

func TestDecodeFields_MalformedJSON(t *testing.T) {
	if _, err := DecodeFields([]byte("{not json")); err == nil {
		t.Error("DecodeFields() expected error for malformed blob")
	}
}

func TestDecodeFields_PartialCurrencyObjectStaysComposite(t *testing.T) {
	fields, err := DecodeFields([]byte(`{"Total":{"value":10},"Other":{"currency":"USD"}}`))
	if err != nil {
		t.Fatalf("DecodeFields() error = %v", err)
	}
	for name, fv := range fields {
		if _, ok := fv.(Currency); ok {
			t.Errorf("%s decoded as Currency, want composite Scalar", name)
		}
	}
}

func TestDecodeFields_NonNumericValueStaysComposite(t *testing.T) {
	fields, err := DecodeFields([]byte(`{"Total":{"value":"150","currency":"USD"}}`))
	if err != nil {
		t.Fatalf("DecodeFields() error = %v", err)
	}
	if _, ok := fields["Total"].(Currency); ok {
		t.Error("string-valued amount must not decode as Currency")
	}
}
