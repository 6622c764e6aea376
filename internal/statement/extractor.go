package statement

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/model"
	"github.com/harpergrove/skein/internal/normalize"
)

// state names the extractor's position in a date block.
type state int

const (
	// stateScanning advances until a date line is found.
	stateScanning state = iota
	// stateAccumulating collects description fragments after a date line.
	stateAccumulating
	// stateAwaitingBalance has a provisional amount; a second amount is the
	// statement's running-balance column and closes the record.
	stateAwaitingBalance
)

// record is one in-progress date block.
type record struct {
	amount    decimal.Decimal
	desc      []string
	month     int
	day       int
	hasAmount bool
}

// Stats reports what an extraction skipped, for merge-level diagnostics.
type Stats struct {
	Emitted          int
	Ambiguous        int // date blocks that closed without any amount
	AmbiguousCovered int // ambiguous blocks whose resolved month lies inside the statement period
	UnresolvedYears  int // records dropped because no year could be resolved
}

// fsm holds the state machine's current state and the block in progress.
type fsm struct {
	cur   record
	state state
}

// Extractor walks classified statement lines and emits one transaction per
// date block.
type Extractor struct {
	classifier  *Classifier
	categorizer *categorize.Categorizer
}

// NewExtractor creates a document transaction extractor.
func NewExtractor(classifier *Classifier, categorizer *categorize.Categorizer) *Extractor {
	return &Extractor{classifier: classifier, categorizer: categorizer}
}

// Extract parses one document's full text. A document yielding zero
// transactions is not an error by itself; the caller judges that against
// the document's coverage.
func (e *Extractor) Extract(sourceFile, text string, period Period) ([]model.Transaction, Stats) {
	var (
		txns  []model.Transaction
		stats Stats
		f     fsm
	)

	flush := func(rec *record) {
		if rec == nil {
			return
		}
		if !rec.hasAmount {
			stats.Ambiguous++
			if year, err := period.YearFor(rec.month); err == nil &&
				period.Covered.Contains(model.YearMonth{Year: year, Month: rec.month}) {
				stats.AmbiguousCovered++
			}
			slog.Debug("date block closed without an amount",
				"source", sourceFile,
				"date", rec.month, "day", rec.day)
			return
		}
		tx, ok := e.buildTransaction(sourceFile, rec, period, &stats)
		if ok {
			txns = append(txns, tx)
			stats.Emitted++
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := e.classifier.Classify(raw)
		emit, stop := f.step(line)
		flush(emit)
		if stop {
			return txns, stats
		}
	}
	flush(f.finish())

	return txns, stats
}

// step is the single transition function of the state machine. It returns
// a record to close (possibly without an amount) and whether a totals
// block terminated extraction for the whole document.
func (f *fsm) step(line Line) (emit *record, stop bool) {
	switch f.state {
	case stateScanning:
		if line.Kind == LineDate {
			f.start(line)
		}
		return nil, false

	case stateAccumulating:
		switch line.Kind {
		case LineBoilerplate:
			return nil, false
		case LineDate:
			// No amount was seen: the current block is abandoned and the
			// new date starts a fresh record.
			closed := f.cur
			f.start(line)
			return &closed, false
		case LineAmount:
			f.cur.amount = line.Amount
			f.cur.hasAmount = true
			f.state = stateAwaitingBalance
			return nil, false
		default:
			if isTotalsLine(line.Text) {
				closed := f.cur
				f.state = stateScanning
				return &closed, true
			}
			f.cur.desc = append(f.cur.desc, line.Text)
			return nil, false
		}

	case stateAwaitingBalance:
		switch line.Kind {
		case LineBoilerplate:
			return nil, false
		case LineAmount:
			// Second amount is the running balance, not part of the record.
			closed := f.cur
			f.state = stateScanning
			return &closed, false
		case LineDate:
			closed := f.cur
			f.start(line)
			return &closed, false
		default:
			if isTotalsLine(line.Text) {
				closed := f.cur
				f.state = stateScanning
				return &closed, true
			}
			f.cur.desc = append(f.cur.desc, line.Text)
			return nil, false
		}
	}
	return nil, false
}

// finish closes whatever block is open at end of input.
func (f *fsm) finish() *record {
	if f.state == stateScanning {
		return nil
	}
	closed := f.cur
	f.state = stateScanning
	return &closed
}

func (f *fsm) start(line Line) {
	f.cur = record{month: line.Month, day: line.Day}
	f.state = stateAccumulating
}

func isTotalsLine(text string) bool {
	return strings.HasPrefix(text, "Total")
}

// buildTransaction turns a closed record into a canonical transaction,
// resolving the year from the statement period. Records whose year cannot
// be resolved are dropped, never guessed.
func (e *Extractor) buildTransaction(sourceFile string, rec *record, period Period, stats *Stats) (model.Transaction, bool) {
	year, err := period.YearFor(rec.month)
	if err != nil {
		stats.UnresolvedYears++
		slog.Warn("dropping record with unresolvable year",
			"source", sourceFile,
			"month", rec.month,
			"error", err)
		return model.Transaction{}, false
	}

	date := time.Date(year, time.Month(rec.month), rec.day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != rec.month || date.Day() != rec.day {
		stats.UnresolvedYears++
		slog.Warn("dropping record with impossible calendar date",
			"source", sourceFile,
			"month", rec.month,
			"day", rec.day)
		return model.Transaction{}, false
	}

	raw := strings.Join(rec.desc, " ")
	raw = strings.Join(strings.Fields(raw), " ")

	kind := inferKind(raw)
	short := normalize.Shorten(raw)

	return model.Transaction{
		Date:           date,
		Description:    short,
		RawDescription: raw,
		Category:       e.categorizer.Categorize(short, kind),
		SourceFile:     sourceFile,
		Amount:         rec.amount,
		Kind:           kind,
	}, true
}

// inferKind classifies a record as a deposit when its description carries
// explicit incoming-transfer phrasing; everything else is a debit.
func inferKind(raw string) model.Kind {
	d := strings.ToUpper(raw)
	if strings.Contains(d, "ACH DEPOSIT") {
		return model.KindDeposit
	}
	if strings.Contains(d, "ETSY") && strings.Contains(d, "PAYOUT") && !strings.Contains(d, "ETSY COM") {
		return model.KindDeposit
	}
	return model.KindDebit
}
