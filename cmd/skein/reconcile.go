package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/harpergrove/skein/internal/extract"
	"github.com/harpergrove/skein/internal/merge"
	"github.com/harpergrove/skein/internal/model"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile all sources into a canonical ledger",
		Long: `Reconcile discovers every statement document and bank export under the
configured source directory, extracts transactions from each, merges them
with document-first priority, applies configured overrides, and persists
the resulting ledger as a new run.

Examples:
  # Reconcile and persist a run
  skein reconcile

  # Preview without persisting
  skein reconcile --dry-run

  # Also write the ledger as JSON
  skein reconcile --out ledger.json`,
		RunE: runReconcile,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Run the pipeline without persisting the ledger")
	cmd.Flags().StringP("out", "o", "", "Write the reconciled ledger to a JSON file")
	cmd.Flags().String("source-dir", "", "Override the configured source directory")
	cmd.Flags().String("pdftotext", "pdftotext", "Text extraction binary for PDF documents")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outPath, _ := cmd.Flags().GetString("out")
	sourceDir, _ := cmd.Flags().GetString("source-dir")
	pdftotext, _ := cmd.Flags().GetString("pdftotext")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}

	sources, err := merge.DiscoverSources(cfg.SourceDir)
	if err != nil {
		return err
	}

	engine := merge.New(cfg, extract.NewCommandExtractor(pdftotext))
	if sources.Total() > 0 {
		bar := progressbar.NewOptions(sources.Total(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Extracting sources..."),
		)
		engine.Progress = func(string) {
			_ = bar.Add(1)
		}
		defer func() { _ = bar.Finish() }()
	}

	ledger, err := engine.Run(cmd.Context())
	if err != nil {
		return err
	}

	printLedgerSummary(&ledger)

	if outPath != "" {
		if err := writeLedgerJSON(outPath, &ledger); err != nil {
			return err
		}
		slog.Info("ledger written", "path", outPath)
	}

	if dryRun {
		slog.Info("dry run; ledger not persisted", "run_id", ledger.RunID)
		return nil
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveLedger(cmd.Context(), ledger); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	slog.Info("run persisted", "run_id", ledger.RunID, "database", cfg.DatabasePath)

	return nil
}

func printLedgerSummary(ledger *model.Ledger) {
	fmt.Printf("\nReconciled %d transactions from %d sources\n",
		len(ledger.Transactions), len(ledger.SourceFiles))
	fmt.Printf("  Deposits: $%s\n", ledger.TotalDeposits.StringFixed(2))
	fmt.Printf("  Debits:   $%s\n", ledger.TotalDebits.StringFixed(2))
	fmt.Printf("  Net:      $%s\n\n", ledger.Net().StringFixed(2))

	for _, s := range ledger.SummarizeBySource() {
		fmt.Printf("  %-40s %4d transactions  +$%s  -$%s\n",
			s.SourceFile, s.Count, s.Deposits.StringFixed(2), s.Debits.StringFixed(2))
	}
}

func writeLedgerJSON(path string, ledger *model.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	return nil
}
