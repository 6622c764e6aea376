package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpergrove/skein/internal/common"
)

func TestResolvePeriod(t *testing.T) {
	t.Run("same-year period", func(t *testing.T) {
		p, err := ResolvePeriod("statement text\nFOR PERIOD NOVEMBER 1, 2025 - NOVEMBER 30, 2025\nmore text")
		require.NoError(t, err)
		assert.Equal(t, 2025, p.StartYear)
		assert.Equal(t, 2025, p.EndYear)
		assert.Equal(t, []string{"2025-11"}, p.Covered.Strings())
	})

	t.Run("cross-year period walks months with rollover", func(t *testing.T) {
		p, err := ResolvePeriod("FOR PERIOD OCTOBER 1, 2025 - JANUARY 31, 2026")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-10", "2025-11", "2025-12", "2026-01"}, p.Covered.Strings())
	})

	t.Run("missing header is an error, never a default", func(t *testing.T) {
		_, err := ResolvePeriod("a page with no period header at all")
		assert.ErrorIs(t, err, common.ErrNoPeriodHeader)
	})

	t.Run("unknown month name", func(t *testing.T) {
		_, err := ResolvePeriod("FOR PERIOD SMARCH 1, 2025 - APRIL 30, 2025")
		assert.ErrorIs(t, err, common.ErrNoPeriodHeader)
	})

	t.Run("inverted period", func(t *testing.T) {
		_, err := ResolvePeriod("FOR PERIOD MARCH 1, 2026 - JANUARY 31, 2026")
		assert.ErrorIs(t, err, common.ErrNoPeriodHeader)
	})
}

func TestPeriod_YearFor(t *testing.T) {
	tests := []struct {
		name      string
		startYear int
		endYear   int
		month     int
		want      int
		wantErr   bool
	}{
		{name: "same year is trivial", startYear: 2025, endYear: 2025, month: 7, want: 2025},
		{name: "cross-year high month belongs to start year", startYear: 2025, endYear: 2026, month: 12, want: 2025},
		{name: "cross-year october belongs to start year", startYear: 2025, endYear: 2026, month: 10, want: 2025},
		{name: "cross-year low month belongs to end year", startYear: 2025, endYear: 2026, month: 1, want: 2026},
		{name: "cross-year march belongs to end year", startYear: 2025, endYear: 2026, month: 3, want: 2026},
		{name: "cross-year mid-year month is unresolvable", startYear: 2025, endYear: 2026, month: 6, wantErr: true},
		{name: "month out of range", startYear: 2025, endYear: 2025, month: 13, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FallbackPeriod(tt.startYear, tt.endYear)
			got, err := p.YearFor(tt.month)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrUnresolvedYear)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackPeriod_ClaimsNoCoverage(t *testing.T) {
	p := FallbackPeriod(2025, 2026)
	assert.Empty(t, p.Covered.Strings())
}
