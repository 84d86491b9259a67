// Package valuation turns fitted growth models into valuation inputs:
// default spreads, cost of debt and discounted cash flows.
package valuation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidSpreadTable is wrapped by every spread table integrity failure.
// A table that fails validation cannot price debt and is a configuration error.
var ErrInvalidSpreadTable = errors.New("invalid default spread table")

// SpreadInterval maps an interest coverage range [Low, High) to a rating and
// its default spread over the risk-free rate.
type SpreadInterval struct {
	Low    float64 `koanf:"low" json:"low" toml:"low"`
	High   float64 `koanf:"high" json:"high" toml:"high"`
	Rating string  `koanf:"rating" json:"rating" toml:"rating"`
	Spread float64 `koanf:"spread" json:"spread" toml:"spread"`
}

// SpreadTable is an ordered, contiguous set of coverage intervals.
type SpreadTable []SpreadInterval

// DefaultSpreadTable returns interest-coverage default spreads for large
// non-financial firms.
func DefaultSpreadTable() SpreadTable {
	return SpreadTable{
		{Low: -100000, High: 0.2, Rating: "D", Spread: 0.1900},
		{Low: 0.2, High: 0.65, Rating: "C", Spread: 0.1550},
		{Low: 0.65, High: 0.8, Rating: "CC", Spread: 0.1180},
		{Low: 0.8, High: 1.25, Rating: "CCC", Spread: 0.0950},
		{Low: 1.25, High: 1.5, Rating: "B-", Spread: 0.0700},
		{Low: 1.5, High: 1.75, Rating: "B", Spread: 0.0551},
		{Low: 1.75, High: 2.0, Rating: "B+", Spread: 0.0461},
		{Low: 2.0, High: 2.25, Rating: "BB", Spread: 0.0338},
		{Low: 2.25, High: 2.5, Rating: "BB+", Spread: 0.0290},
		{Low: 2.5, High: 3.0, Rating: "BBB", Spread: 0.0242},
		{Low: 3.0, High: 4.25, Rating: "A-", Spread: 0.0200},
		{Low: 4.25, High: 5.5, Rating: "A", Spread: 0.0178},
		{Low: 5.5, High: 6.5, Rating: "A+", Spread: 0.0162},
		{Low: 6.5, High: 8.5, Rating: "AA", Spread: 0.0133},
		{Low: 8.5, High: 100000, Rating: "AAA", Spread: 0.0100},
	}
}

// Validate checks that the table is non-empty, finite, ordered and has no
// gaps or overlaps between consecutive intervals.
func (t SpreadTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no intervals", ErrInvalidSpreadTable)
	}
	for i, iv := range t {
		if !finite(iv.Low) || !finite(iv.High) || !finite(iv.Spread) {
			return fmt.Errorf("%w: interval %d (%s) has a non-finite bound or spread", ErrInvalidSpreadTable, i, iv.Rating)
		}
		if iv.Low >= iv.High {
			return fmt.Errorf("%w: interval %d (%s) is empty: [%g, %g)", ErrInvalidSpreadTable, i, iv.Rating, iv.Low, iv.High)
		}
		if iv.Spread < 0 {
			return fmt.Errorf("%w: interval %d (%s) has negative spread %g", ErrInvalidSpreadTable, i, iv.Rating, iv.Spread)
		}
		if i > 0 && t[i-1].High != iv.Low {
			return fmt.Errorf("%w: discontinuity between %s and %s at %g/%g",
				ErrInvalidSpreadTable, t[i-1].Rating, iv.Rating, t[i-1].High, iv.Low)
		}
	}
	return nil
}

// Lookup returns the interval containing coverage. Coverage outside the
// table is clamped to its first or last interval. A NaN coverage (missing
// data) has no interval.
func (t SpreadTable) Lookup(coverage float64) (SpreadInterval, bool) {
	if len(t) == 0 || math.IsNaN(coverage) {
		return SpreadInterval{}, false
	}
	i := sort.Search(len(t), func(i int) bool { return coverage < t[i].High })
	if i == len(t) {
		i = len(t) - 1
	}
	return t[i], true
}

// CostOfDebt returns riskFree plus the default spread for coverage.
// The second result is false when coverage is missing.
func (t SpreadTable) CostOfDebt(riskFree, coverage float64) (float64, bool) {
	iv, ok := t.Lookup(coverage)
	if !ok {
		return math.NaN(), false
	}
	cost := riskFree + iv.Spread
	if !finite(cost) {
		panic(fmt.Sprintf("valuation: cost of debt is %v for coverage %g; spread table was not validated", cost, coverage))
	}
	return cost, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
