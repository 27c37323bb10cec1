package core

// convert.go turns the string values of a submitted form into typed values.
//
// The form sends everything as strings: ids of selected options, a positive
// integer capacity, a locale-formatted price ("R$ 1.234,56") and ISO or
// Brazilian dates. Parse* helpers report ok=false for empty or invalid
// input; ToPg* helpers return pgtype values with Valid=false for empty values.

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// dateLayouts lists the accepted date formats, ISO first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseDate parses an ISO (YYYY-MM-DD) or Brazilian (DD/MM/YYYY) date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToPgDate converts a parsed date to pgtype.Date. The zero time is invalid.
func ToPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// ParseID parses the id of a selected option. Ids are positive 32-bit integers.
func ParseID(s string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

// ParsePositiveInt parses a strictly positive integer that fits in 32 bits.
func ParsePositiveInt(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	return ParseID(s)
}

// ParsePriceCents parses a monetary value into cents.
//
// Accepted: "1.234,56", "R$ 1.234,56", "1234,5", "1234.56", "1234".
// A comma always marks the decimal part; without a comma a single dot
// followed by one or two digits is a decimal point, otherwise dots are
// thousands separators. Negative amounts and more than two decimals are rejected.
func ParsePriceCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	intPart, fracPart := splitDecimal(s)
	if intPart == "" && fracPart == "" {
		return 0, false
	}
	if !allDigits(intPart) || !allDigits(fracPart) || len(fracPart) > 2 {
		return 0, false
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	cents, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return cents, true
}

// splitDecimal separates integer and fractional digits, dropping thousands separators.
func splitDecimal(s string) (string, string) {
	if i := strings.LastIndex(s, ","); i >= 0 {
		return strings.ReplaceAll(s[:i], ".", ""), s[i+1:]
	}
	if strings.Count(s, ".") == 1 {
		i := strings.Index(s, ".")
		if frac := s[i+1:]; len(frac) <= 2 {
			return s[:i], frac
		}
	}
	return strings.ReplaceAll(s, ".", ""), ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CentsToPgNumeric converts an amount in cents to a two-decimal pgtype.Numeric.
func CentsToPgNumeric(cents int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(cents), Exp: -2, Valid: true}
}

// FormatCents renders cents in Brazilian notation: 123456 -> "1.234,56".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
