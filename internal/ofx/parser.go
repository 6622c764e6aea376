// Package ofx extracts transactions from OFX/QFX bank exports. OFX sources
// merge at the same priority tier as CSV exports: statement documents
// outrank both for any month they cover.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/model"
	"github.com/harpergrove/skein/internal/normalize"
)

// Fix missing closing angle brackets in SGML-style OFX files: an opening
// tag alone on its line with no closing bracket.
var tagFixRe = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

var severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// Parser implements OFX/QFX export parsing.
type Parser struct {
	categorizer *categorize.Categorizer
}

// NewParser creates an OFX parser.
func NewParser(categorizer *categorize.Categorizer) *Parser {
	return &Parser{categorizer: categorizer}
}

// preprocess fixes formatting quirks seen in real bank OFX exports before
// handing the content to ofxgo.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRe.ReplaceAllString(content, "$1>")
}

// Extract parses one OFX/QFX export into canonical transactions plus the
// coverage observed in the posted dates.
func (p *Parser) Extract(ctx context.Context, sourceFile string, reader io.Reader) ([]model.Transaction, model.Coverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		txns     []model.Transaction
		coverage = model.NewCoverage()
	)

	add := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			tx, convErr := p.convert(sourceFile, ofxTx)
			if convErr != nil {
				slog.Warn("skipping OFX transaction",
					"source", sourceFile,
					"fitid", string(ofxTx.FiTID),
					"error", convErr)
				continue
			}
			coverage.Add(tx.Month())
			txns = append(txns, tx)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(stmt.BankTranList)
		}
	}

	slog.Info("parsed OFX export",
		"source", sourceFile,
		"transactions", len(txns),
		"months", coverage.Strings())

	return txns, coverage, nil
}

// convert maps one OFX transaction to the canonical model. OFX amounts are
// signed (negative for debits); the sign becomes the kind and the amount is
// kept as a magnitude.
func (p *Parser) convert(sourceFile string, ofxTx ofxgo.Transaction) (model.Transaction, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("bad amount: %w", err)
	}

	kind := model.KindDeposit
	if amount.IsNegative() {
		kind = model.KindDebit
		amount = amount.Neg()
	}

	raw := strings.TrimSpace(string(ofxTx.Name))
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != raw {
		raw = strings.TrimSpace(raw + " " + memo)
	}
	if raw == "" {
		return model.Transaction{}, fmt.Errorf("transaction has no description")
	}

	short := normalize.Shorten(raw)
	return model.Transaction{
		Date:           ofxTx.DtPosted.Time.UTC(),
		Description:    short,
		RawDescription: raw,
		Category:       p.categorizer.Categorize(short, kind),
		SourceFile:     sourceFile,
		Amount:         amount,
		Kind:           kind,
	}, nil
}
