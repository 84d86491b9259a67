package fundamental

import (
	"math"

	"github.com/panbanda/fundgrowth/pkg/models"
)

// EffectiveTaxRate returns income tax expense over pre-tax income, clamped
// to [0, 1]. A missing tax expense or a non-positive pre-tax income gives 0.
func EffectiveTaxRate(l Lookup, timeUnit, date string) Value {
	pretax := l.Lookup(Financials(SectionIncomeStatement, timeUnit, FieldIncomeBeforeTax), date)
	if pretax.IsMissing() {
		return Missing()
	}
	ebt := pretax.Or(0)
	if ebt <= 0 {
		return Present(0)
	}
	tax := LookupFloat(l, Financials(SectionIncomeStatement, timeUnit, FieldIncomeTaxExpense), date, MissingAsSentinel)
	return Present(math.Min(1, math.Max(0, tax/ebt)))
}

// AfterTaxOperatingIncome returns operating income net of the effective tax rate.
func AfterTaxOperatingIncome(l Lookup, timeUnit, date string) Value {
	oi := LookupFloat(l, Financials(SectionIncomeStatement, timeUnit, FieldOperatingIncome), date, MissingAsNaN)
	rate := EffectiveTaxRate(l, timeUnit, date).Float(MissingAsNaN)
	return Present(oi * (1 - rate))
}

// ReinvestmentRate returns the share of after-tax operating income spent on
// net capital expenditure and working capital:
//
//	(|capex| - depreciation - changeInWorkingCapital) / afterTaxOperatingIncome
//
// changeInWorkingCapital follows the cash-flow sign convention (negative when
// working capital grows). Missing depreciation or working-capital entries
// count as nothing; missing capex or operating income make the rate missing.
func ReinvestmentRate(l Lookup, timeUnit, date string) Value {
	income, ok := AfterTaxOperatingIncome(l, timeUnit, date).Get()
	if !ok || income == 0 {
		return Missing()
	}
	capex := LookupFloat(l, Financials(SectionCashFlow, timeUnit, FieldCapitalExpenditures), date, MissingAsNaN)
	dep := LookupFloat(l, Financials(SectionCashFlow, timeUnit, FieldDepreciation), date, MissingAsSentinel)
	dwc := LookupFloat(l, Financials(SectionCashFlow, timeUnit, FieldChangeInWorkingCapital), date, MissingAsSentinel)
	return Present((math.Abs(capex) - dep - dwc) / income)
}

// DerivedSeries evaluates a per-date formula at every date, skipping missing results.
func DerivedSeries(l Lookup, timeUnit string, dates []ReportDate, formula func(Lookup, string, string) Value) []models.SamplePoint {
	points := make([]models.SamplePoint, 0, len(dates))
	for _, d := range dates {
		if v, ok := formula(l, timeUnit, d.Date).Get(); ok {
			points = append(points, models.SamplePoint{Date: d.Date, Year: d.Year, Value: v})
		}
	}
	return points
}
