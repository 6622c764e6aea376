package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_CanonicalKey(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	a := Transaction{Date: date, Amount: decimal.NewFromFloat(114.31), Kind: KindDebit, RawDescription: "AMAZON MKTPL XY12AB"}
	b := Transaction{Date: date, Amount: decimal.NewFromFloat(114.31), Kind: KindDebit, RawDescription: "AMAZON MKTPL XY12AB"}
	c := Transaction{Date: date, Amount: decimal.NewFromFloat(114.31), Kind: KindDeposit, RawDescription: "AMAZON MKTPL XY12AB"}

	assert.Equal(t, a.CanonicalKey(), b.CanonicalKey())
	assert.NotEqual(t, a.CanonicalKey(), c.CanonicalKey())
}

func TestTransaction_Signed(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		amount string
		want   string
	}{
		{name: "deposit is positive", kind: KindDeposit, amount: "250.00", want: "250"},
		{name: "debit is negative", kind: KindDebit, amount: "98.10", want: "-98.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			tx := Transaction{Amount: amt, Kind: tt.kind}
			assert.Equal(t, tt.want, tx.Signed().String())
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain decimal", input: "87.20", want: "87.2"},
		{name: "dollar prefix", input: "$1,234.56", want: "1234.56"},
		{name: "valid zero", input: "0.00", want: "0"},
		{name: "empty string", input: "", wantErr: true},
		{name: "garbage", input: "N/A", wantErr: true},
		{name: "negative magnitude", input: "-45.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCoverage(t *testing.T) {
	t.Run("range crosses year boundary", func(t *testing.T) {
		c := CoverageRange(YearMonth{2025, 10}, YearMonth{2026, 1})
		assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01"}, c.Strings())
	})

	t.Run("diff removes covered months", func(t *testing.T) {
		csv := NewCoverage(YearMonth{2025, 12}, YearMonth{2026, 1}, YearMonth{2026, 2})
		docs := NewCoverage(YearMonth{2025, 12}, YearMonth{2026, 1})
		assert.Equal(t, []string{"2026-02"}, csv.Diff(docs).Strings())
	})

	t.Run("union accumulates", func(t *testing.T) {
		c := NewCoverage(YearMonth{2026, 1})
		c.Union(NewCoverage(YearMonth{2026, 2}))
		assert.True(t, c.Contains(YearMonth{2026, 2}))
	})
}
