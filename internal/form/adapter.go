package form

import (
	"strings"
	"time"

	"github.com/JonMunkholm/lotes/internal/core"
)

// InputKind is the kind of control a field is rendered with.
type InputKind string

const (
	InputText     InputKind = "text"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
	InputSelect   InputKind = "select"
	InputTextArea InputKind = "textarea"
	InputPrice    InputKind = "price"
)

// Valid reports whether k is a known input kind.
func (k InputKind) Valid() bool {
	switch k {
	case InputText, InputNumber, InputDate, InputSelect, InputTextArea, InputPrice:
		return true
	}
	return false
}

// Change is a normalized input event.
type Change struct {
	Field Field
	Raw   string
}

// Adapter normalizes a raw event value of one input kind. ok is false when
// the value must not reach the state at all.
type Adapter func(field Field, raw string) (change Change, ok bool)

// AdapterFor returns the adapter of an input kind. Unknown kinds are treated
// as text.
func AdapterFor(kind InputKind) Adapter {
	switch kind {
	case InputNumber:
		return adaptNumber
	case InputDate:
		return adaptDate
	case InputSelect:
		return adaptSelect
	case InputPrice:
		return adaptPrice
	default:
		return adaptText
	}
}

func adaptText(field Field, raw string) (Change, bool) {
	return Change{Field: field, Raw: raw}, true
}

// adaptSelect takes the chosen option id; clearing the select yields "".
func adaptSelect(field Field, raw string) (Change, bool) {
	return Change{Field: field, Raw: strings.TrimSpace(raw)}, true
}

// adaptNumber accepts positive integers only. Leading zeros are dropped and
// zero counts as missing. Anything with a non-digit is refused.
func adaptNumber(field Field, raw string) (Change, bool) {
	s := strings.TrimSpace(raw)
	for _, r := range s {
		if r < '0' || r > '9' {
			return Change{}, false
		}
	}
	s = strings.TrimLeft(s, "0")
	return Change{Field: field, Raw: s}, true
}

// adaptDate accepts YYYY-MM-DD, the value of a date input.
func adaptDate(field Field, raw string) (Change, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Change{Field: field}, true
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return Change{}, false
	}
	return Change{Field: field, Raw: s}, true
}

// adaptPrice reformats a typed amount as "1.234,56".
func adaptPrice(field Field, raw string) (Change, bool) {
	if strings.TrimSpace(raw) == "" {
		return Change{Field: field}, true
	}
	cents, ok := core.ParsePriceCents(raw)
	if !ok {
		return Change{}, false
	}
	return Change{Field: field, Raw: core.FormatCents(cents)}, true
}
