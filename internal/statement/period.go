package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/harpergrove/skein/internal/common"
	"github.com/harpergrove/skein/internal/model"
)

var monthNumbers = map[string]int{
	"JANUARY": 1, "FEBRUARY": 2, "MARCH": 3, "APRIL": 4,
	"MAY": 5, "JUNE": 6, "JULY": 7, "AUGUST": 8,
	"SEPTEMBER": 9, "OCTOBER": 10, "NOVEMBER": 11, "DECEMBER": 12,
}

var periodHeaderRe = regexp.MustCompile(`FOR PERIOD\s+(\w+)\s+(\d{1,2}),?\s+(\d{4})\s*-\s*(\w+)\s+(\d{1,2}),?\s+(\d{4})`)

// Period is a statement's declared coverage: the start and end years plus
// the explicit set of months spanned.
type Period struct {
	Covered   model.Coverage
	StartYear int
	EndYear   int
}

// ResolvePeriod locates the "FOR PERIOD <Month> <Day>, <Year> - <Month>
// <Day>, <Year>" header in a document's text. It returns
// common.ErrNoPeriodHeader when no header is found; the caller decides
// whether to fall back to a configured period or skip the document.
func ResolvePeriod(text string) (Period, error) {
	m := periodHeaderRe.FindStringSubmatch(text)
	if m == nil {
		return Period{}, common.ErrNoPeriodHeader
	}

	startMonth, ok := monthNumbers[strings.ToUpper(m[1])]
	if !ok {
		return Period{}, fmt.Errorf("unknown month %q in period header: %w", m[1], common.ErrNoPeriodHeader)
	}
	endMonth, ok := monthNumbers[strings.ToUpper(m[4])]
	if !ok {
		return Period{}, fmt.Errorf("unknown month %q in period header: %w", m[4], common.ErrNoPeriodHeader)
	}

	startYear, _ := strconv.Atoi(m[3])
	endYear, _ := strconv.Atoi(m[6])

	start := model.YearMonth{Year: startYear, Month: startMonth}
	end := model.YearMonth{Year: endYear, Month: endMonth}
	if end.Before(start) {
		return Period{}, fmt.Errorf("period header ends before it starts (%s - %s): %w", start, end, common.ErrNoPeriodHeader)
	}

	return Period{
		StartYear: startYear,
		EndYear:   endYear,
		Covered:   model.CoverageRange(start, end),
	}, nil
}

// FallbackPeriod builds a period from configured years alone. Its coverage
// is empty: a document parsed under a fallback never claims ownership of
// any month during the merge.
func FallbackPeriod(startYear, endYear int) Period {
	return Period{
		StartYear: startYear,
		EndYear:   endYear,
		Covered:   model.NewCoverage(),
	}
}

// YearFor resolves the calendar year for a bare two-digit month from the
// statement body. Same-year statements are trivial. For statements that
// cross a year boundary the resolution follows the observed Q4/Q1 rollover
// pattern: months October-December belong to the start year and
// January-March to the end year. Months April-September in a cross-year
// statement cannot be resolved and are an error, a known limitation; the
// extractor fails such records rather than guessing.
func (p Period) YearFor(month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("month %d out of range: %w", month, common.ErrUnresolvedYear)
	}
	if p.StartYear == p.EndYear {
		return p.StartYear, nil
	}
	switch {
	case month >= 10:
		return p.StartYear, nil
	case month <= 3:
		return p.EndYear, nil
	default:
		return 0, fmt.Errorf("month %02d ambiguous in %d-%d statement: %w",
			month, p.StartYear, p.EndYear, common.ErrUnresolvedYear)
	}
}
