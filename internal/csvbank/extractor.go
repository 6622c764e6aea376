// Package csvbank extracts transactions from bank CSV exports. The export
// format is: account number, credit, debit, description, posted date.
// The description may contain embedded commas inside quotes that a naive
// splitter would misparse, and the final field is always a quoted
// MM/DD/YYYY date.
package csvbank

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/common"
	"github.com/harpergrove/skein/internal/model"
	"github.com/harpergrove/skein/internal/normalize"
)

// The trailing quoted date is fixed-format and reliable, so it is located
// and stripped first; conventional quoted-field splitting then runs on the
// remainder.
var trailingDateRe = regexp.MustCompile(`,\s*"(\d{2}/\d{2}/\d{4})"\s*$`)

// Stats counts what an extraction saw and skipped.
type Stats struct {
	Rows      int
	Malformed int
}

// Extractor parses CSV exports into canonical transactions.
type Extractor struct {
	categorizer *categorize.Categorizer
}

// NewExtractor creates a CSV transaction extractor.
func NewExtractor(categorizer *categorize.Categorizer) *Extractor {
	return &Extractor{categorizer: categorizer}
}

// Extract reads one export. Every emitted transaction carries a fully
// resolved date; malformed rows are skipped and counted, never partially
// emitted. The returned coverage is the set of months observed in the date
// column.
func (e *Extractor) Extract(sourceFile string, r io.Reader) ([]model.Transaction, model.Coverage, Stats, error) {
	var (
		txns     []model.Transaction
		coverage = model.NewCoverage()
		stats    Stats
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			// Tolerate a UTF-8 byte-order mark on the header line.
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
			continue // header row
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stats.Rows++

		tx, err := e.parseRow(sourceFile, line)
		if err != nil {
			stats.Malformed++
			slog.Warn("skipping malformed CSV row",
				"source", sourceFile,
				"row", stats.Rows,
				"error", err)
			continue
		}

		coverage.Add(tx.Month())
		txns = append(txns, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, stats, fmt.Errorf("failed to read %s: %w", sourceFile, err)
	}

	return txns, coverage, stats, nil
}

func (e *Extractor) parseRow(sourceFile, line string) (model.Transaction, error) {
	loc := trailingDateRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return model.Transaction{}, fmt.Errorf("no trailing quoted date: %w", common.ErrMalformedRow)
	}
	dateStr := line[loc[2]:loc[3]]
	remainder := line[:loc[0]]

	date, err := time.Parse("01/02/2006", dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("bad posted date %q: %w", dateStr, common.ErrMalformedRow)
	}

	reader := csv.NewReader(strings.NewReader(remainder))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	fields, err := reader.Read()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("field split failed: %w", common.ErrMalformedRow)
	}
	if len(fields) < 4 {
		return model.Transaction{}, fmt.Errorf("%d fields, want at least 4: %w", len(fields), common.ErrMalformedRow)
	}

	credit := strings.TrimSpace(fields[1])
	debit := strings.TrimSpace(fields[2])

	// Rejoin description fields that embedded commas may have split apart.
	rawDesc := strings.Join(fields[3:], ",")
	rawDesc = strings.TrimSpace(strings.Trim(strings.TrimSpace(rawDesc), `"`))

	var (
		amountStr string
		kind      model.Kind
	)
	switch {
	case credit != "" && debit != "":
		return model.Transaction{}, fmt.Errorf("both credit and debit populated: %w", common.ErrMalformedRow)
	case credit != "":
		amountStr, kind = credit, model.KindDeposit
	case debit != "":
		amountStr, kind = debit, model.KindDebit
	default:
		return model.Transaction{}, fmt.Errorf("neither credit nor debit populated: %w", common.ErrMalformedRow)
	}

	amount, err := model.ParseMoney(amountStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%v: %w", err, common.ErrMalformedRow)
	}

	short := normalize.Shorten(rawDesc)
	return model.Transaction{
		Date:           date,
		Description:    short,
		RawDescription: rawDesc,
		Category:       e.categorizer.Categorize(short, kind),
		SourceFile:     sourceFile,
		Amount:         amount,
		Kind:           kind,
	}, nil
}
