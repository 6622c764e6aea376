// Package model defines the canonical transaction types shared by every
// extractor and by the merge engine.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction's effect on the account balance.
type Kind string

const (
	// KindDeposit represents money entering the account.
	KindDeposit Kind = "deposit"
	// KindDebit represents money leaving the account.
	KindDebit Kind = "debit"
)

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k == KindDeposit || k == KindDebit
}

// Transaction is the canonical unit produced by every source extractor.
// Amount is always a non-negative magnitude; the signed effect on a running
// balance is derived from Kind, never embedded in Amount.
type Transaction struct {
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`     // short canonical label from the normalizer
	RawDescription string          `json:"raw_description"` // original source text, kept for audit and override matching
	Category       string          `json:"category"`
	SourceFile     string          `json:"source_file"` // provenance only; merge priority is decided per source type
	Amount         decimal.Decimal `json:"amount"`
	Kind           Kind            `json:"kind"`
}

// CanonicalKey returns the tuple used for cross-source duplicate detection.
func (t *Transaction) CanonicalKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Kind,
		t.RawDescription)
}

// Signed returns the transaction's effect on a running balance:
// +Amount for deposits, -Amount for debits.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Kind == KindDeposit {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Month returns the calendar month the transaction falls in.
func (t *Transaction) Month() YearMonth {
	return YearMonth{Year: t.Date.Year(), Month: int(t.Date.Month())}
}
