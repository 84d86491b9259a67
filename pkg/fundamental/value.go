// Package fundamental is the boundary between report data and the growth
// engine: field lookup with explicit missing values, report dates and the
// extraction of metric series.
package fundamental

import (
	"fmt"
	"math"
)

// MissingSentinel is the finite placeholder rendered for a missing value in
// MissingAsSentinel mode. It is below one cent, so it rounds visibly to zero
// and vanishes in sums.
const MissingSentinel = 0.000001

// MissingMode selects how a missing value is rendered as a float.
type MissingMode int

const (
	// MissingAsNaN renders absence as NaN so arithmetic propagates it.
	MissingAsNaN MissingMode = iota
	// MissingAsSentinel renders absence as MissingSentinel.
	MissingAsSentinel
)

// Value is a looked-up number that may be absent.
type Value struct {
	v  float64
	ok bool
}

// Present returns a Value holding v. A NaN or infinite v is treated as absent.
func Present(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// Missing returns an absent Value.
func Missing() Value {
	return Value{}
}

// Get returns the value and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// IsMissing reports whether v is absent.
func (v Value) IsMissing() bool {
	return !v.ok
}

// Float renders v, substituting absence according to mode.
func (v Value) Float(mode MissingMode) float64 {
	if v.ok {
		return v.v
	}
	if mode == MissingAsSentinel {
		return MissingSentinel
	}
	return math.NaN()
}

// Or returns the value, or fallback when absent.
func (v Value) Or(fallback float64) float64 {
	if v.ok {
		return v.v
	}
	return fallback
}

func (v Value) String() string {
	if !v.ok {
		return "missing"
	}
	return fmt.Sprintf("%g", v.v)
}
