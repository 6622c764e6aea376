package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/harpergrove/skein/internal/model"
	"github.com/harpergrove/skein/internal/storage"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the most recent reconciled run",
		Long: `Report loads the most recent persisted run and prints totals, a
per-category rollup, and a per-source breakdown.`,
		RunE: runReport,
	}

	cmd.Flags().Bool("by-month", false, "Roll categories up per month instead of overall")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	byMonth, _ := cmd.Flags().GetBool("by-month")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ledger, err := store.LatestLedger(cmd.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoRuns) {
			return fmt.Errorf("no runs recorded yet; run 'skein reconcile' first")
		}
		return err
	}

	fmt.Printf("Run %s (%s)\n", ledger.RunID, ledger.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Printf("  %d transactions from %d sources\n", len(ledger.Transactions), len(ledger.SourceFiles))
	fmt.Printf("  Deposits: $%s\n", ledger.TotalDeposits.StringFixed(2))
	fmt.Printf("  Debits:   $%s\n", ledger.TotalDebits.StringFixed(2))
	fmt.Printf("  Net:      $%s\n", ledger.Net().StringFixed(2))

	if byMonth {
		printMonthlyRollup(&ledger)
	} else {
		printCategoryRollup(&ledger)
	}

	fmt.Println("\nBy source:")
	for _, s := range ledger.SummarizeBySource() {
		fmt.Printf("  %-40s %4d transactions  +$%s  -$%s\n",
			s.SourceFile, s.Count, s.Deposits.StringFixed(2), s.Debits.StringFixed(2))
	}

	return nil
}

// categoryTotal is one line of the category rollup. Deposits and debits are
// kept separate so a category never nets against itself invisibly.
type categoryTotal struct {
	category string
	deposits decimal.Decimal
	debits   decimal.Decimal
	count    int
}

func printCategoryRollup(ledger *model.Ledger) {
	totals := rollupByCategory(ledger.Transactions)

	fmt.Println("\nBy category:")
	for _, t := range totals {
		fmt.Printf("  %-30s %4d transactions  +$%s  -$%s\n",
			t.category, t.count, t.deposits.StringFixed(2), t.debits.StringFixed(2))
	}
}

func printMonthlyRollup(ledger *model.Ledger) {
	byMonth := make(map[model.YearMonth][]model.Transaction)
	for _, tx := range ledger.Transactions {
		m := tx.Month()
		byMonth[m] = append(byMonth[m], tx)
	}

	months := make([]model.YearMonth, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	for _, m := range months {
		fmt.Printf("\n%s:\n", m)
		for _, t := range rollupByCategory(byMonth[m]) {
			fmt.Printf("  %-30s %4d transactions  +$%s  -$%s\n",
				t.category, t.count, t.deposits.StringFixed(2), t.debits.StringFixed(2))
		}
	}
}

func rollupByCategory(txns []model.Transaction) []categoryTotal {
	byCategory := make(map[string]*categoryTotal)
	for _, tx := range txns {
		t, ok := byCategory[tx.Category]
		if !ok {
			t = &categoryTotal{category: tx.Category}
			byCategory[tx.Category] = t
		}
		t.count++
		switch tx.Kind {
		case model.KindDeposit:
			t.deposits = t.deposits.Add(tx.Amount)
		case model.KindDebit:
			t.debits = t.debits.Add(tx.Amount)
		}
	}

	out := make([]categoryTotal, 0, len(byCategory))
	for _, t := range byCategory {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].category < out[j].category })
	return out
}
