package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney parses a monetary magnitude such as "$1,234.56" or "87.20".
// A leading dollar sign and thousands separators are tolerated. Unlike a
// blanket coercion to zero, an unparsable string is an error so malformed
// source data surfaces as a diagnostic instead of silently skewing totals.
func ParseMoney(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty monetary value %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparsable monetary value %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative magnitude %q: amounts carry sign via kind", s)
	}
	return d, nil
}
