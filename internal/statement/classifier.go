// Package statement extracts transactions from the text of bank statement
// documents. The text itself comes from an external extraction step; this
// package only sees plain per-document text.
package statement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LineKind is the shape of one line of statement text.
type LineKind int

const (
	// LineText is an ordinary description fragment.
	LineText LineKind = iota
	// LineDate is a bare MM/DD token occupying the whole line.
	LineDate
	// LineAmount is a dollar-prefixed decimal occupying the whole line.
	LineAmount
	// LineBoilerplate is a known non-transactional line.
	LineBoilerplate
)

// Line is one classified line of statement text.
type Line struct {
	Text   string
	Amount decimal.Decimal
	Kind   LineKind
	Month  int
	Day    int
}

var (
	dateLineRe   = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	amountLineRe = regexp.MustCompile(`^\$([0-9,]+\.\d{2})$`)
	// Period banner lines repeated inside the transaction table, e.g.
	// "JANUARY 1, 2026" or "- JANUARY 31, 2026".
	monthBannerRe = regexp.MustCompile(`^-?\s*(JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)\s+\d`)

	// Support-line furniture, e.g. "call us at 1-888-755-2172".
	supportPhoneRe = regexp.MustCompile(`\bat 1-8\d{2}-\d{3}-\d{4}\b`)
)

// Repeated column headers and page furniture present on every statement page.
var defaultBoilerplateExact = map[string]struct{}{
	"Date":               {},
	"Description":        {},
	"Deposits/Credits":   {},
	"Withdrawals/Debits": {},
	"Resulting Balance":  {},
	"ACCOUNT DETAIL":     {},
}

var defaultBoilerplateSubstrings = []string{
	"CONTINUED FOR PERIOD",
	"PAGE ",
	"Products and services",
	"Speak to a dedicated",
	"both your business",
}

// Classifier recognizes line shapes. The boilerplate set can be extended
// through configuration without touching the extractor's state machine.
type Classifier struct {
	extraBoilerplate []string
}

// NewClassifier creates a classifier. extraBoilerplate entries are matched
// as substrings, case-sensitively, in addition to the built-in set.
func NewClassifier(extraBoilerplate []string) *Classifier {
	return &Classifier{extraBoilerplate: extraBoilerplate}
}

// Classify maps one raw line to its shape. Pure; no side effects.
func (c *Classifier) Classify(raw string) Line {
	text := strings.TrimSpace(raw)

	if m := dateLineRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return Line{Kind: LineDate, Text: text, Month: month, Day: day}
	}

	if m := amountLineRe.FindStringSubmatch(text); m != nil {
		// The regex guarantees a parsable decimal.
		amt, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			return Line{Kind: LineAmount, Text: text, Amount: amt}
		}
	}

	if c.isBoilerplate(text) {
		return Line{Kind: LineBoilerplate, Text: text}
	}

	return Line{Kind: LineText, Text: text}
}

func (c *Classifier) isBoilerplate(text string) bool {
	if _, ok := defaultBoilerplateExact[text]; ok {
		return true
	}
	for _, sub := range defaultBoilerplateSubstrings {
		if strings.Contains(text, sub) {
			return true
		}
	}
	if monthBannerRe.MatchString(text) || supportPhoneRe.MatchString(text) {
		return true
	}
	for _, sub := range c.extraBoilerplate {
		if sub != "" && strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
