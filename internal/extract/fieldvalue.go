// Package extract normalizes heterogeneous document-understanding output
// into the canonical field shape persisted and exported by the application.
package extract

// FieldValue is one extracted field's value. It is a closed union: the only
// implementations are Scalar and Currency.
type FieldValue interface {
	isFieldValue()
}

// Scalar holds a plain value: text, a number, or any JSON-decodable
// composite for fields the extraction source did not classify.
type Scalar struct {
	Value any
}

func (Scalar) isFieldValue() {}

// Currency holds an amount together with its ISO 4217 code. A value is only
// classified Currency when both parts are present.
type Currency struct {
	Amount       float64
	CurrencyCode string
}

func (Currency) isFieldValue() {}
