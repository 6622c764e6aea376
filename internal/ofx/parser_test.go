package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpergrove/skein/internal/categorize"
	"github.com/harpergrove/skein/internal/model"
)

// Sample OFX data in SGML form, with tags deliberately missing their
// closing brackets the way some banks emit them.
const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20260215120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260201120000[0:GMT]
<DTEND>20260228120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260203120000[0:GMT]
<TRNAMT>450.00
<FITID>2026020301
<NAME>ACH DEPOSIT ETSY INC PAYOUT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260210120000[0:GMT]
<TRNAMT>-114.31
<FITID>2026021001
<NAME>AMAZON MKTPL XY12AB
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20260228120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParser_Extract(t *testing.T) {
	p := NewParser(categorize.New(nil))

	txns, coverage, err := p.Extract(context.Background(), "export.qfx", strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	deposit := txns[0]
	assert.Equal(t, model.KindDeposit, deposit.Kind)
	assert.Equal(t, "450", deposit.Amount.String())
	assert.Equal(t, "ETSY PAYOUT", deposit.Description)
	assert.Equal(t, "Etsy Payout", deposit.Category)
	assert.Equal(t, "2026-02-03", deposit.Date.Format("2006-01-02"))
	assert.Equal(t, "export.qfx", deposit.SourceFile)

	debit := txns[1]
	assert.Equal(t, model.KindDebit, debit.Kind)
	assert.Equal(t, "114.31", debit.Amount.String())
	assert.Equal(t, "Amazon Inventory", debit.Category)
	assert.True(t, debit.Amount.IsPositive(), "amount must be a magnitude; sign lives in kind")

	assert.Equal(t, []string{"2026-02"}, coverage.Strings())
}

func TestParser_ExtractGarbage(t *testing.T) {
	p := NewParser(categorize.New(nil))

	_, _, err := p.Extract(context.Background(), "bad.ofx", strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}

func TestParser_ExtractCanceledContext(t *testing.T) {
	p := NewParser(categorize.New(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := p.Extract(ctx, "export.qfx", strings.NewReader(sampleOFX))
	assert.ErrorIs(t, err, context.Canceled)
}
