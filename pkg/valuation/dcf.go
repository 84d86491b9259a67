package valuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/panbanda/fundgrowth/pkg/models"
)

// ErrNoConvergence is returned when the discount rate does not exceed the
// terminal growth rate, so the Gordon terminal value diverges.
var ErrNoConvergence = errors.New("discount rate must exceed terminal growth")

// DCFInput holds the inputs of a two-stage discounted cash flow valuation.
type DCFInput struct {
	CashFlow       float64 // most recent annual free cash flow
	Growth         float64 // annual growth over the projection
	Years          int
	DiscountRate   float64
	TerminalGrowth float64
}

// DCFResult holds the outputs of DiscountedCashFlow.
type DCFResult struct {
	Projected            []float64 `json:"projected"`
	PresentValue         float64   `json:"present_value"`          // of the projected cash flows
	TerminalValue        float64   `json:"terminal_value"`         // at the end of the projection
	PresentTerminalValue float64   `json:"present_terminal_value"` // discounted to today
	Total                float64   `json:"total"`
}

// DiscountedCashFlow projects CashFlow at Growth for Years, discounts each
// year at DiscountRate and adds a Gordon growth terminal value.
func DiscountedCashFlow(in DCFInput) (DCFResult, error) {
	if in.Years < 0 {
		return DCFResult{}, fmt.Errorf("projection years must be non-negative, got %d", in.Years)
	}
	if in.DiscountRate <= in.TerminalGrowth {
		return DCFResult{}, fmt.Errorf("%w: %g <= %g", ErrNoConvergence, in.DiscountRate, in.TerminalGrowth)
	}

	res := DCFResult{Projected: make([]float64, in.Years)}
	cf := in.CashFlow
	discount := 1.0
	for i := range res.Projected {
		cf *= 1 + in.Growth
		discount /= 1 + in.DiscountRate
		res.Projected[i] = cf
		res.PresentValue += cf * discount
	}

	res.TerminalValue = cf * (1 + in.TerminalGrowth) / (in.DiscountRate - in.TerminalGrowth)
	res.PresentTerminalValue = res.TerminalValue * discount
	res.Total = res.PresentValue + res.PresentTerminalValue
	return res, nil
}

// ProjectionGrowth returns the growth rate to project with from a fitted
// model: the trendline growth, capped at maxGrowth in magnitude.
func ProjectionGrowth(m models.EmpiricalGrowthModel, maxGrowth float64) (float64, bool) {
	g := m.GrowthRate()
	if !m.ValidFitting || math.IsNaN(g) {
		return math.NaN(), false
	}
	if maxGrowth > 0 {
		g = math.Max(-maxGrowth, math.Min(maxGrowth, g))
	}
	return g, true
}

// FundamentalGrowth returns ROIC × mean reinvestment rate for an operating
// income window, the growth the window's reinvestment can sustain.
func FundamentalGrowth(e models.EmpiricalGrowthEntry) (float64, bool) {
	if e.ReturnOnInvestedCapital == nil || e.ReinvestmentRateMean == nil {
		return math.NaN(), false
	}
	return *e.ReturnOnInvestedCapital * *e.ReinvestmentRateMean, true
}

// InterestCoverage returns operating income over interest expense at date.
func InterestCoverage(l fundamental.Lookup, timeUnit, date string) fundamental.Value {
	oi := l.Lookup(fundamental.Financials(fundamental.SectionIncomeStatement, timeUnit, fundamental.FieldOperatingIncome), date)
	interest := l.Lookup(fundamental.Financials(fundamental.SectionIncomeStatement, timeUnit, fundamental.FieldInterestExpense), date)
	i, ok := interest.Get()
	if oi.IsMissing() || !ok {
		return fundamental.Missing()
	}
	if i == 0 {
		return fundamental.Present(math.MaxFloat64)
	}
	return fundamental.Present(oi.Float(fundamental.MissingAsNaN) / math.Abs(i))
}
