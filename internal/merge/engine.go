// Package merge reconciles every available source into one canonical
// ledger: documents first, CSV/OFX exports for months documents don't
// cover, manual config entries for months nothing covers, then mutation
// overrides over the unioned result.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/common"
	"github.com/harpergrove/skein/internal/config"
	"github.com/harpergrove/skein/internal/csvbank"
	"github.com/harpergrove/skein/internal/extract"
	"github.com/harpergrove/skein/internal/model"
	"github.com/harpergrove/skein/internal/ofx"
	"github.com/harpergrove/skein/internal/override"
	"github.com/harpergrove/skein/internal/statement"
)

// documentWorkers bounds parallel document extraction. Sources are
// independent text blobs, so extraction parallelizes freely; the merge
// itself runs single-threaded once all extractions complete.
const documentWorkers = 4

// Sources is the set of files discovered for one run, split by kind.
// Documents are authoritative for the months they cover; CSV and OFX
// exports share the second tier; manual config entries are the last resort.
type Sources struct {
	Documents []string
	CSVs      []string
	OFX       []string
}

// Total returns the number of discovered source files.
func (s Sources) Total() int {
	return len(s.Documents) + len(s.CSVs) + len(s.OFX)
}

// DiscoverSources lists the source files under dir, sorted per kind.
func DiscoverSources(dir string) (Sources, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Sources{}, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	var s Sources
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf", ".txt":
			s.Documents = append(s.Documents, name)
		case ".csv":
			s.CSVs = append(s.CSVs, name)
		case ".ofx", ".qfx":
			s.OFX = append(s.OFX, name)
		}
	}
	sort.Strings(s.Documents)
	sort.Strings(s.CSVs)
	sort.Strings(s.OFX)
	return s, nil
}

// Engine runs the full multi-source reconciliation.
type Engine struct {
	cfg           config.Config
	textExtractor extract.TextExtractor
	docExtractor  *statement.Extractor
	csvExtractor  *csvbank.Extractor
	ofxParser     *ofx.Parser
	overrides     *override.Engine

	// Progress, when set, is invoked once per completed source file. It
	// may be called from concurrent extraction workers.
	Progress func(sourceFile string)
}

// New wires an engine from configuration. The same configuration drives
// categorization, boilerplate recognition, overrides, and manual entries,
// so a run is fully determined by (config, source files).
func New(cfg config.Config, textExtractor extract.TextExtractor) *Engine {
	categorizer := categorize.New(cfg.CategoryOverrides)
	classifier := statement.NewClassifier(cfg.ExtraBoilerplate)
	return &Engine{
		cfg:           cfg,
		textExtractor: textExtractor,
		docExtractor:  statement.NewExtractor(classifier, categorizer),
		csvExtractor:  csvbank.NewExtractor(categorizer),
		ofxParser:     ofx.NewParser(categorizer),
		overrides:     override.NewEngine(cfg.TransactionOverrides),
	}
}

// documentResult is one document's extraction outcome.
type documentResult struct {
	err      error
	coverage model.Coverage
	name     string
	txns     []model.Transaction
}

// Run executes the pipeline and returns the canonical ledger. A single
// unparsable source is skipped with a diagnostic; only finding no sources
// at all is fatal.
func (e *Engine) Run(ctx context.Context) (model.Ledger, error) {
	sources, err := DiscoverSources(e.cfg.SourceDir)
	if err != nil {
		return model.Ledger{}, err
	}
	if sources.Total() == 0 {
		return model.Ledger{}, common.NewUserError(
			fmt.Sprintf("no statement documents or exports in %s", e.cfg.SourceDir),
			common.ErrNoSources)
	}

	slog.Info("starting reconciliation",
		"documents", len(sources.Documents),
		"csv_exports", len(sources.CSVs),
		"ofx_exports", len(sources.OFX))

	// Step 1: documents, extracted in parallel, merged in name order so
	// identical inputs always produce identical ledgers.
	docResults, err := e.extractDocuments(ctx, sources.Documents)
	if err != nil {
		return model.Ledger{}, err
	}

	var ledgerTxns []model.Transaction
	coverage := model.NewCoverage()
	for _, res := range docResults {
		if res.err != nil {
			slog.Error("skipping unparsable document", "source", res.name, "error", res.err)
			continue
		}
		if len(res.txns) == 0 && len(res.coverage) > 0 {
			slog.Warn("document covers months but yielded no transactions",
				"source", res.name,
				"months", res.coverage.Strings())
		}
		ledgerTxns = append(ledgerTxns, res.txns...)
		coverage.Union(res.coverage)
	}

	// Step 2: CSV and OFX exports share the second priority tier.
	exportTxns, exportCoverage := e.extractExports(ctx, sources)
	if err := ctx.Err(); err != nil {
		return model.Ledger{}, err
	}

	// Step 3: dedup exports; newer exports are supersets of older ones, so
	// later-seen duplicates are dropped.
	deduped := dedupe(exportTxns)

	// Steps 4-6: exports only contribute months no document covers.
	newMonths := exportCoverage.Diff(coverage)
	retained, discarded := 0, 0
	for _, tx := range deduped {
		if newMonths.Contains(tx.Month()) {
			ledgerTxns = append(ledgerTxns, tx)
			retained++
		} else {
			discarded++
		}
	}
	coverage.Union(newMonths)
	if discarded > 0 {
		slog.Warn("discarded export transactions for document-covered months",
			"discarded", discarded,
			"retained", retained)
	}

	// Step 7: manual entries backstop months still uncovered; once real
	// data arrives for a month the manual entry is skipped so nothing is
	// double-counted.
	manualAdded, manualSkipped := 0, 0
	for _, m := range e.cfg.ManualTransactions {
		tx, convErr := m.Transaction()
		if convErr != nil {
			slog.Error("skipping invalid manual transaction", "date", m.Date, "error", convErr)
			continue
		}
		if coverage.Contains(tx.Month()) {
			manualSkipped++
			continue
		}
		ledgerTxns = append(ledgerTxns, tx)
		coverage.Add(tx.Month())
		manualAdded++
	}
	if manualAdded > 0 || manualSkipped > 0 {
		slog.Info("manual transactions processed",
			"added", manualAdded,
			"skipped_covered", manualSkipped)
	}

	// Step 8: mutation overrides, once, over the fully unioned list.
	ledgerTxns = e.overrides.Apply(ledgerTxns)

	// Step 9: final ledger with summary totals.
	ledger := model.Ledger{
		GeneratedAt:  time.Now().UTC(),
		RunID:        uuid.NewString(),
		SourceFiles:  append(append(append([]string{}, sources.Documents...), sources.CSVs...), sources.OFX...),
		Transactions: ledgerTxns,
	}
	for _, tx := range ledgerTxns {
		switch tx.Kind {
		case model.KindDeposit:
			ledger.TotalDeposits = ledger.TotalDeposits.Add(tx.Amount)
		case model.KindDebit:
			ledger.TotalDebits = ledger.TotalDebits.Add(tx.Amount)
		}
	}

	slog.Info("reconciliation complete",
		"transactions", len(ledgerTxns),
		"months", coverage.Strings(),
		"total_deposits", ledger.TotalDeposits.StringFixed(2),
		"total_debits", ledger.TotalDebits.StringFixed(2))

	return ledger, nil
}

// extractDocuments runs document extraction across a bounded worker pool.
// Results come back indexed by source so merge order stays deterministic.
func (e *Engine) extractDocuments(ctx context.Context, docs []string) ([]documentResult, error) {
	results := make([]documentResult, len(docs))
	work := make(chan int)

	var wg sync.WaitGroup
	workers := documentWorkers
	if len(docs) < workers {
		workers = len(docs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = e.extractDocument(ctx, docs[i])
				e.reportProgress(docs[i])
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// extractDocument parses one document end to end: text extraction, period
// resolution (with the configured fallback), then the line state machine.
func (e *Engine) extractDocument(ctx context.Context, name string) documentResult {
	res := documentResult{name: name, coverage: model.NewCoverage()}

	text, err := e.textExtractor.ExtractText(ctx, filepath.Join(e.cfg.SourceDir, name))
	if err != nil {
		res.err = err
		return res
	}

	period, err := statement.ResolvePeriod(text)
	if err != nil {
		if e.cfg.FallbackPeriod == nil {
			res.err = fmt.Errorf("cannot determine statement period: %w", err)
			return res
		}
		slog.Warn("no period header; using configured fallback years",
			"source", name,
			"start_year", e.cfg.FallbackPeriod.StartYear,
			"end_year", e.cfg.FallbackPeriod.EndYear)
		period = statement.FallbackPeriod(e.cfg.FallbackPeriod.StartYear, e.cfg.FallbackPeriod.EndYear)
	}

	txns, stats := e.docExtractor.Extract(name, text, period)
	if stats.AmbiguousCovered > 0 {
		slog.Warn("document had date blocks with no amounts inside its own period",
			"source", name,
			"ambiguous_records", stats.AmbiguousCovered)
	}

	res.txns = txns
	res.coverage = period.Covered
	return res
}

// extractExports parses CSV then OFX sources sequentially, accumulating one
// shared transaction list and coverage for the export tier.
func (e *Engine) extractExports(ctx context.Context, sources Sources) ([]model.Transaction, model.Coverage) {
	var txns []model.Transaction
	coverage := model.NewCoverage()

	for _, name := range sources.CSVs {
		if ctx.Err() != nil {
			return txns, coverage
		}
		f, err := os.Open(filepath.Join(e.cfg.SourceDir, name))
		if err != nil {
			slog.Error("skipping unreadable CSV export", "source", name, "error", err)
			e.reportProgress(name)
			continue
		}
		fileTxns, fileCoverage, stats, err := e.csvExtractor.Extract(name, f)
		_ = f.Close()
		if err != nil {
			slog.Error("skipping unparsable CSV export", "source", name, "error", err)
			e.reportProgress(name)
			continue
		}
		if stats.Malformed > 0 {
			slog.Warn("CSV export had malformed rows",
				"source", name,
				"rows", stats.Rows,
				"malformed", stats.Malformed)
		}
		txns = append(txns, fileTxns...)
		coverage.Union(fileCoverage)
		e.reportProgress(name)
	}

	for _, name := range sources.OFX {
		if ctx.Err() != nil {
			return txns, coverage
		}
		f, err := os.Open(filepath.Join(e.cfg.SourceDir, name))
		if err != nil {
			slog.Error("skipping unreadable OFX export", "source", name, "error", err)
			e.reportProgress(name)
			continue
		}
		fileTxns, fileCoverage, err := e.ofxParser.Extract(ctx, name, f)
		_ = f.Close()
		if err != nil {
			slog.Error("skipping unparsable OFX export", "source", name, "error", err)
			e.reportProgress(name)
			continue
		}
		txns = append(txns, fileTxns...)
		coverage.Union(fileCoverage)
		e.reportProgress(name)
	}

	return txns, coverage
}

// dedupe drops later-seen duplicates by canonical key, preserving first-seen
// order.
func dedupe(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for _, tx := range txns {
		key := tx.CanonicalKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out
}

func (e *Engine) reportProgress(name string) {
	if e.Progress != nil {
		e.Progress(name)
	}
}
