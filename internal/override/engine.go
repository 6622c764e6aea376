// Package override applies user-declared corrections to merged ledgers:
// splitting one line into several category-attributed pieces, or forcing a
// category. Overrides come from configuration and are applied exactly once
// per merge run; the transactions they produce are the only persisted form.
package override

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/harpergrove/skein/internal/config"
	"github.com/harpergrove/skein/internal/model"
)

// Amount matching tolerance: overrides are written by hand against cents.
var amountTolerance = decimal.New(1, -2)

// Engine evaluates mutation overrides in declaration order.
type Engine struct {
	overrides []config.Override
}

// NewEngine creates an override engine from configured rules.
func NewEngine(overrides []config.Override) *Engine {
	return &Engine{overrides: overrides}
}

// Apply tests each transaction against the overrides in declaration order.
// The first matching override wins; when more than one would have matched,
// a diagnostic is logged to surface the configuration ambiguity. Unmatched
// transactions pass through unchanged.
func (e *Engine) Apply(txns []model.Transaction) []model.Transaction {
	if len(e.overrides) == 0 {
		return txns
	}

	out := make([]model.Transaction, 0, len(txns))
	for _, tx := range txns {
		first := -1
		for i, o := range e.overrides {
			if !matches(o.Match, tx) {
				continue
			}
			if first == -1 {
				first = i
				continue
			}
			slog.Warn("transaction matches multiple overrides; first wins",
				"description", tx.Description,
				"date", tx.Date.Format("01/02/2006"),
				"applied_override", first,
				"shadowed_override", i)
		}
		if first == -1 {
			out = append(out, tx)
			continue
		}
		out = append(out, apply(e.overrides[first], tx)...)
	}
	return out
}

func matches(m config.OverrideMatch, tx model.Transaction) bool {
	if m.DescContains != "" {
		needle := strings.ToUpper(m.DescContains)
		if !strings.Contains(strings.ToUpper(tx.Description), needle) &&
			!strings.Contains(strings.ToUpper(tx.RawDescription), needle) {
			return false
		}
	}
	if m.Date != "" && !strings.HasPrefix(tx.Date.Format("01/02/2006"), m.Date) {
		return false
	}
	if m.Amount != nil {
		want := decimal.NewFromFloat(*m.Amount)
		if tx.Amount.Sub(want).Abs().GreaterThan(amountTolerance) {
			return false
		}
	}
	return true
}

// apply produces the replacement transactions for a matched override. A
// split's pieces inherit the original's date, description, and kind but
// carry their own declared amount and category. The pieces are not required
// to sum to the original amount.
func apply(o config.Override, tx model.Transaction) []model.Transaction {
	switch o.Action {
	case "split":
		pieces := make([]model.Transaction, 0, len(o.Splits))
		for _, split := range o.Splits {
			piece := tx
			piece.Amount = decimal.NewFromFloat(split.Amount)
			piece.Category = split.Category
			pieces = append(pieces, piece)
		}
		return pieces
	case "recategorize":
		tx.Category = o.Category
		return []model.Transaction{tx}
	default:
		// Unknown actions are rejected by config validation; passing the
		// transaction through keeps the engine total.
		return []model.Transaction{tx}
	}
}
