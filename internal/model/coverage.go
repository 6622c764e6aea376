package model

import (
	"fmt"
	"sort"
)

// YearMonth identifies one calendar month with a fully resolved year.
type YearMonth struct {
	Year  int
	Month int
}

// String formats the month as YYYY-MM, the form used in logs and reports.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Next returns the following calendar month, rolling the year at December.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Before reports whether ym precedes other in calendar order.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Coverage is the set of calendar months a source is authoritative for.
type Coverage map[YearMonth]struct{}

// NewCoverage builds a coverage set from explicit months.
func NewCoverage(months ...YearMonth) Coverage {
	c := make(Coverage, len(months))
	for _, m := range months {
		c[m] = struct{}{}
	}
	return c
}

// CoverageRange builds a coverage set spanning start through end inclusive.
func CoverageRange(start, end YearMonth) Coverage {
	c := make(Coverage)
	for m := start; !end.Before(m); m = m.Next() {
		c[m] = struct{}{}
	}
	return c
}

// Contains reports whether the month is covered.
func (c Coverage) Contains(ym YearMonth) bool {
	_, ok := c[ym]
	return ok
}

// Add marks a month as covered.
func (c Coverage) Add(ym YearMonth) {
	c[ym] = struct{}{}
}

// Union adds every month of other into c.
func (c Coverage) Union(other Coverage) {
	for m := range other {
		c[m] = struct{}{}
	}
}

// Diff returns the months in c that are absent from other.
func (c Coverage) Diff(other Coverage) Coverage {
	out := make(Coverage)
	for m := range c {
		if _, ok := other[m]; !ok {
			out[m] = struct{}{}
		}
	}
	return out
}

// Months returns the covered months in calendar order.
func (c Coverage) Months() []YearMonth {
	out := make([]YearMonth, 0, len(c))
	for m := range c {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the covered months as sorted YYYY-MM labels.
func (c Coverage) Strings() []string {
	months := c.Months()
	out := make([]string, len(months))
	for i, m := range months {
		out[i] = m.String()
	}
	return out
}
