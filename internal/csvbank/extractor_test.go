package csvbank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/model"
)

const header = `"Account Number","Credit","Debit","Description","Posted Date"` + "\n"

func newTestExtractor() *Extractor {
	return NewExtractor(categorize.New(nil))
}

func TestExtract_EmbeddedCommaInDescription(t *testing.T) {
	data := header +
		`"1234","450.00","","ETSY, INC. PAYOUT","01/15/2026"` + "\n"

	txns, coverage, stats, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Zero(t, stats.Malformed)

	tx := txns[0]
	assert.Equal(t, "ETSY, INC. PAYOUT", tx.RawDescription)
	assert.Equal(t, "2026-01-15", tx.Date.Format("2006-01-02"))
	assert.Equal(t, model.KindDeposit, tx.Kind)
	assert.Equal(t, "450", tx.Amount.String())
	assert.Equal(t, "ETSY PAYOUT", tx.Description)
	assert.Equal(t, []string{"2026-01"}, coverage.Strings())
}

func TestExtract_DebitRow(t *testing.T) {
	data := header +
		`"1234","","114.31","AMAZON MKTPL XY12AB","02/02/2026"` + "\n"

	txns, _, _, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.KindDebit, txns[0].Kind)
	assert.Equal(t, "114.31", txns[0].Amount.String())
	assert.Equal(t, "Amazon Inventory", txns[0].Category)
}

func TestExtract_ByteOrderMarkTolerated(t *testing.T) {
	data := "\uFEFF" + header +
		`"1234","","22.50","UPS STORE 4821 TULSA OK","01/20/2026"` + "\n"

	txns, _, _, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestExtract_MalformedRowsSkippedWithCount(t *testing.T) {
	data := header +
		`"1234","","12.00","NO TRAILING DATE HERE"` + "\n" + // missing quoted date
		`"1234","","","BOTH AMOUNTS EMPTY","01/05/2026"` + "\n" +
		`"1234","10.00","20.00","BOTH AMOUNTS SET","01/05/2026"` + "\n" +
		`"1234","","N/A","UNPARSABLE AMOUNT","01/05/2026"` + "\n" +
		`"1234","","31.07","QT 114 TULSA OK","01/06/2026"` + "\n"

	txns, coverage, stats, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)

	// One good row survives; the rest are diagnostics, not fatal errors.
	require.Len(t, txns, 1)
	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 4, stats.Malformed)
	assert.Equal(t, []string{"2026-01"}, coverage.Strings())
}

func TestExtract_CoverageFromObservedDates(t *testing.T) {
	data := header +
		`"1234","","10.00","USPS CLICKNSHIP","12/30/2025"` + "\n" +
		`"1234","","11.00","USPS CLICKNSHIP","01/02/2026"` + "\n" +
		`"1234","250.00","","ACH DEPOSIT ETSY INC PAYOUT","02/01/2026"` + "\n"

	_, coverage, _, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12", "2026-01", "2026-02"}, coverage.Strings())
}

func TestExtract_EmptyFileYieldsNothing(t *testing.T) {
	txns, coverage, stats, err := newTestExtractor().Extract("export.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.Empty(t, coverage)
	assert.Zero(t, stats.Rows)
}

func TestExtract_ValidZeroAmountIsKept(t *testing.T) {
	// A literal zero is valid data, distinct from an unparsable amount.
	data := header +
		`"1234","0.00","","COURTESY ADJUSTMENT","01/10/2026"` + "\n"

	txns, _, stats, err := newTestExtractor().Extract("export.csv", strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Zero(t, stats.Malformed)
	assert.True(t, txns[0].Amount.IsZero())
}
