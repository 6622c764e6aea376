package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "etsy ach deposit",
			raw:  "ACH DEPOSIT ETSY INC PAYOUT 0000123",
			want: "ETSY PAYOUT",
		},
		{
			name: "etsy inc payout variant",
			raw:  "ETSY, INC. PAYOUT REF 99821",
			want: "ETSY PAYOUT",
		},
		{
			name: "amazon keeps order suffix",
			raw:  "DEBIT CARD PURCHASE AMAZON MKTPL XY12AB AMZN.COM/BILL WA",
			want: "AMAZON MKTPL XY12AB",
		},
		{
			name: "ups store with city state",
			raw:  "DEBIT CARD PURCHASE UPS STORE 4821 TULSA OK",
			want: "UPS STORE TULSA OK",
		},
		{
			name: "ups store without location",
			raw:  "UPS STORE PENDING",
			want: "UPS STORE",
		},
		{
			name: "usps click n ship",
			raw:  "USPS CLICKNSHIP 800-344-7779 DC",
			want: "USPS CLICKNSHIP",
		},
		{
			name: "hobby lobby with location",
			raw:  "HOBBYLOBBY TULSA OK",
			want: "HOBBYLOBBY TULSA OK",
		},
		{
			name: "walmart with store number and location",
			raw:  "WAL MART 0132 TULSA OK",
			want: "WAL MART TULSA OK",
		},
		{
			name: "walmart without store number",
			raw:  "WAL MART SUPERCENTER",
			want: "WAL MART",
		},
		{
			name: "westlake hardware",
			raw:  "WESTLAKE HARDWARE 19 TULSA OK",
			want: "WESTLAKE HARDWARE TULSA OK",
		},
		{
			name: "etsy fees",
			raw:  "ETSY COM US 718-8557955 NY",
			want: "ETSY COM US",
		},
		{
			name: "paypal alipay sub-merchant before generic paypal",
			raw:  "PAYPAL ALIPAYUSINC 402-935-7733 CA",
			want: "PAYPAL ALIPAYUSINC",
		},
		{
			name: "paypal thangs subscription",
			raw:  "PAYPAL THANGS 3D 629-888-1234",
			want: "PAYPAL THANGS 3D",
		},
		{
			name: "venmo payee with phone noise stripped",
			raw:  "VENMO JANE DOE 855 812 4430 NY",
			want: "VENMO JANE DOE",
		},
		{
			name: "quiktrip with location",
			raw:  "QT 114 TULSA OK",
			want: "QT TULSA OK",
		},
		{
			name: "best buy autopay with account holder",
			raw:  "BEST BUY AUTO PYMT JOHN Q PUBLIC",
			want: "BEST BUY AUTO PYMT JOHN Q PUBLIC",
		},
		{
			name: "chipotle city state",
			raw:  "CHIPOTLE 1122 TULSA OK",
			want: "CHIPOTLE TULSA OK",
		},
		{
			name: "unknown merchant falls back to prefix",
			raw:  "SOME NEVER BEFORE SEEN MERCHANT WITH A VERY LONG DESCRIPTION LINE THAT EXCEEDS THE PREFIX",
			want: "SOME NEVER BEFORE SEEN MERCHANT WITH A VERY LONG D",
		},
		{
			name: "short unknown text returned as is",
			raw:  "  COFFEE   SHOP  ",
			want: "COFFEE SHOP",
		},
		{
			name: "fallback truncates by runes not bytes",
			raw:  strings.Repeat("Z", 49) + "é STORE",
			want: strings.Repeat("Z", 49) + "é",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shorten(tt.raw))
		})
	}
}

func TestShorten_IsTotal(t *testing.T) {
	// The normalizer backstops unknown merchants: any input yields a valid
	// label of at most 50 runes.
	inputs := []string{"", " ", strings.Repeat("X", 500), "1234567890", strings.Repeat("é", 200)}
	for _, in := range inputs {
		out := Shorten(in)
		assert.LessOrEqual(t, len([]rune(out)), 50)
		assert.True(t, utf8.ValidString(out), "label must be valid UTF-8: %q", out)
	}
}
