package output

import (
	"fmt"
	"math"

	"github.com/panbanda/fundgrowth/pkg/models"
	"github.com/panbanda/fundgrowth/pkg/valuation"
)

// GrowthRow is the serialized summary of one fitted window.
type GrowthRow struct {
	Date             string   `json:"date"`
	Model            string   `json:"model"`
	Points           int      `json:"points"`
	Duration         float64  `json:"duration"`
	AnnualGrowthRate *float64 `json:"annual_growth_rate"`
	R2               *float64 `json:"r2"`
	R2Trendline      *float64 `json:"r2_trendline"`
	R2Cyclic         *float64 `json:"r2_cyclic,omitempty"`
	Harmonics        int      `json:"harmonics"`
	Outliers         int      `json:"outliers"`

	ReinvestmentRateMean    *float64 `json:"reinvestment_rate_mean,omitempty"`
	ReinvestmentRateStdDev  *float64 `json:"reinvestment_rate_std_dev,omitempty"`
	ReturnOnInvestedCapital *float64 `json:"return_on_invested_capital,omitempty"`
}

func growthRow(e models.MetricGrowthEntry) GrowthRow {
	m := e.Model
	row := GrowthRow{
		Date:             e.Date,
		Model:            m.ModelType.String(),
		Points:           len(m.X),
		Duration:         m.Duration,
		AnnualGrowthRate: models.Finite(e.AnnualGrowthRate),
		R2:               models.Finite(m.R2),
		R2Trendline:      models.Finite(m.R2Trendline),
		Harmonics:        m.Harmonics(),
		Outliers:         m.OutlierCount,
	}
	if m.R2Cyclic != nil {
		row.R2Cyclic = models.Finite(*m.R2Cyclic)
	}
	return row
}

var growthHeaders = []string{"Anchor", "Model", "Points", "Years", "Growth", "R²", "R² trend", "R² cyclic", "Harmonics"}

func (r GrowthRow) cells() []string {
	return []string{
		r.Date,
		r.Model,
		fmt.Sprintf("%d", r.Points),
		fmt.Sprintf("%.2f", r.Duration),
		percent(r.AnnualGrowthRate),
		decimal(r.R2),
		decimal(r.R2Trendline),
		decimal(r.R2Cyclic),
		fmt.Sprintf("%d", r.Harmonics),
	}
}

// NewMetricGrowthTable renders a metric growth dataset. With detailed set,
// serialized output carries the complete dataset instead of the summary rows.
func NewMetricGrowthTable(title string, ds models.MetricGrowthDataSet, detailed bool) *Table {
	summary := make([]GrowthRow, len(ds.Entries))
	rows := make([][]string, len(ds.Entries))
	for i, e := range ds.Entries {
		summary[i] = growthRow(e)
		rows[i] = summary[i].cells()
	}

	var data any = map[string]any{"metric": ds.Metric, "windows": summary}
	if detailed {
		data = ds
	}
	t := NewTable(title, growthHeaders, rows, growthFooter(len(ds.Entries), len(growthHeaders)), data)
	t.Labels = 2
	t.Notes = growthNotes(len(ds.Entries))
	return t
}

// NewOperatingIncomeTable renders an after-tax operating income dataset with
// reinvestment statistics and ROIC per window.
func NewOperatingIncomeTable(title string, ds models.EmpiricalGrowthDataSet, detailed bool) *Table {
	headers := append(append([]string{}, growthHeaders...), "Reinvestment", "Reinv. SD", "ROIC", "Sustainable")
	summary := make([]GrowthRow, len(ds.Entries))
	rows := make([][]string, len(ds.Entries))
	for i, e := range ds.Entries {
		row := growthRow(e.MetricGrowthEntry)
		row.ReinvestmentRateMean = e.ReinvestmentRateMean
		row.ReinvestmentRateStdDev = e.ReinvestmentRateStdDev
		row.ReturnOnInvestedCapital = e.ReturnOnInvestedCapital
		summary[i] = row

		sustainable := "-"
		if g, ok := valuation.FundamentalGrowth(e); ok {
			sustainable = percent(&g)
		}
		rows[i] = append(row.cells(),
			percent(e.ReinvestmentRateMean),
			percent(e.ReinvestmentRateStdDev),
			percent(e.ReturnOnInvestedCapital),
			sustainable,
		)
	}

	var data any = map[string]any{"windows": summary}
	if detailed {
		data = ds
	}
	t := NewTable(title, headers, rows, growthFooter(len(ds.Entries), len(headers)), data)
	t.Labels = 2
	t.Notes = growthNotes(len(ds.Entries))
	if len(ds.Entries) > 0 {
		t.Notes = append(t.Notes, "Sustainable growth is ROIC x mean reinvestment rate.")
	}
	return t
}

// NewFittedSeriesTable renders the series of one fitted window: the fitted
// values, their trend and cyclical parts, and for cyclical models the
// residual the cycle was fitted to with its trend-relative size and rank.
func NewFittedSeriesTable(title string, m models.EmpiricalGrowthModel) *Table {
	headers := []string{"Year", "Fitted", "Trend", "Cyclic", "Residual", "Residual/trend", "Rank"}
	rows := make([][]string, len(m.X))
	for i, x := range m.X {
		rows[i] = []string{
			fmt.Sprintf("%.2f", x),
			amount(at(m.Y, i)),
			amount(at(m.YTrendline, i)),
			amount(at(m.YCyclic, i)),
			amount(at(m.YCyclicData, i)),
			percent(models.Finite(at(m.YCyclicNormData, i))),
			percent(models.Finite(at(m.YCyclicNormDataPercentiles, i))),
		}
	}

	t := NewTable(title, headers, rows, nil, m)
	t.Labels = 1
	t.Notes = []string{fmt.Sprintf("%s model, %d harmonics, R² %s.", m.ModelType, m.Harmonics(), decimal(models.Finite(m.R2)))}
	return t
}

// NewDetailedReport pairs a growth table with supporting detail tables.
// Serialized output is the table's own data.
func NewDetailedReport(table *Table, details ...*Table) *Report {
	r := &Report{Sections: []Renderable{table}, Data: table.RenderData()}
	for _, d := range details {
		r.Details = append(r.Details, d)
	}
	return r
}

// NewValuationTable renders a discounted cash flow result.
func NewValuationTable(title string, growth float64, res valuation.DCFResult) *Table {
	rows := make([][]string, 0, len(res.Projected)+3)
	for i, cf := range res.Projected {
		rows = append(rows, []string{fmt.Sprintf("Year %d", i+1), amount(cf)})
	}
	rows = append(rows,
		[]string{"Terminal value", amount(res.TerminalValue)},
		[]string{"PV of projection", amount(res.PresentValue)},
		[]string{"PV of terminal value", amount(res.PresentTerminalValue)},
	)
	data := map[string]any{"growth": models.Finite(growth), "dcf": res}
	t := NewTable(title, []string{"Item", "Value"}, rows, []string{"Total (" + percent(&growth) + " growth)", amount(res.Total)}, data)
	t.Labels = 1
	return t
}

func growthFooter(n, columns int) []string {
	if n == 0 {
		return nil
	}
	footer := make([]string, columns)
	footer[0] = fmt.Sprintf("%d windows", n)
	return footer
}

// growthNotes explains the table to readers of a text or Markdown report.
func growthNotes(windows int) []string {
	if windows == 0 {
		return []string{"No window has a valid growth model."}
	}
	return []string{"Growth is the annual trendline rate. Windows without a valid model are omitted."}
}

// at returns s[i], or NaN when s is shorter than i+1.
func at(s models.Series, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return math.NaN()
}

func percent(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

func decimal(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

func amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
