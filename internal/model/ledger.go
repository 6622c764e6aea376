package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the reconciled output of a full pipeline run. It is the only
// contract the downstream reporting layer depends on.
type Ledger struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	RunID         string          `json:"run_id"`
	SourceFiles   []string        `json:"source_files"`
	Transactions  []Transaction   `json:"transactions"`
	TotalDeposits decimal.Decimal `json:"total_deposits"`
	TotalDebits   decimal.Decimal `json:"total_debits"`
}

// Net returns deposits minus debits.
func (l *Ledger) Net() decimal.Decimal {
	return l.TotalDeposits.Sub(l.TotalDebits)
}

// SourceSummary aggregates one source file's contribution to the ledger.
type SourceSummary struct {
	SourceFile string
	Count      int
	Deposits   decimal.Decimal
	Debits     decimal.Decimal
}

// SummarizeBySource computes per-source totals in SourceFiles order.
func (l *Ledger) SummarizeBySource() []SourceSummary {
	byFile := make(map[string]*SourceSummary)
	order := make([]string, 0, len(l.SourceFiles))
	for _, tx := range l.Transactions {
		s, ok := byFile[tx.SourceFile]
		if !ok {
			s = &SourceSummary{SourceFile: tx.SourceFile}
			byFile[tx.SourceFile] = s
			order = append(order, tx.SourceFile)
		}
		s.Count++
		switch tx.Kind {
		case KindDeposit:
			s.Deposits = s.Deposits.Add(tx.Amount)
		case KindDebit:
			s.Debits = s.Debits.Add(tx.Amount)
		}
	}
	out := make([]SourceSummary, 0, len(order))
	for _, f := range order {
		out = append(out, *byFile[f])
	}
	return out
}
