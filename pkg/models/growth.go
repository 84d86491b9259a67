package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// GrowthModelKind identifies the parametric form of an empirical growth model.
// The numeric values are the explicit model-type selector accepted by
// EmpiricalGrowthSettings.TypeOfEmpiricalModel (0-3).
type GrowthModelKind int

const (
	ExponentialModel GrowthModelKind = iota
	ExponentialCyclicalModel
	LinearModel
	LinearCyclicalModel
	CyclicalModel
)

// AutomaticModelSelection asks the selector to choose between the exponential
// and linear families by goodness of fit.
const AutomaticModelSelection = -1

var growthModelKindNames = [...]string{
	ExponentialModel:         "exponential",
	ExponentialCyclicalModel: "exponential_cyclical",
	LinearModel:              "linear",
	LinearCyclicalModel:      "linear_cyclical",
	CyclicalModel:            "cyclical",
}

// String returns the snake_case name of the kind.
func (k GrowthModelKind) String() string {
	if k < 0 || int(k) >= len(growthModelKindNames) {
		return fmt.Sprintf("GrowthModelKind(%d)", int(k))
	}
	return growthModelKindNames[k]
}

// Valid reports whether k is one of the defined kinds.
func (k GrowthModelKind) Valid() bool {
	return k >= ExponentialModel && k <= CyclicalModel
}

// Selectable reports whether k may be requested explicitly by configuration.
// The pure cyclical model is only ever produced internally.
func (k GrowthModelKind) Selectable() bool {
	return k >= ExponentialModel && k <= LinearCyclicalModel
}

// HasCyclicalComponent reports whether the model carries harmonic terms.
func (k GrowthModelKind) HasCyclicalComponent() bool {
	return k == ExponentialCyclicalModel || k == LinearCyclicalModel || k == CyclicalModel
}

// Trend returns the trendline family of k: ExponentialModel or LinearModel.
// The pure cyclical model has no trendline and returns itself.
func (k GrowthModelKind) Trend() GrowthModelKind {
	switch k {
	case ExponentialModel, ExponentialCyclicalModel:
		return ExponentialModel
	case LinearModel, LinearCyclicalModel:
		return LinearModel
	default:
		return k
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k GrowthModelKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid growth model kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *GrowthModelKind) UnmarshalText(text []byte) error {
	parsed, err := ParseGrowthModelKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseGrowthModelKind converts a model name to its kind. Hyphens and
// spaces are accepted in place of underscores.
func ParseGrowthModelKind(s string) (GrowthModelKind, error) {
	name := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	for i, n := range growthModelKindNames {
		if n == name {
			return GrowthModelKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown growth model %q", s)
}

// SamplePoint is a single observation of a metric at a report date.
type SamplePoint struct {
	Date  string  `json:"date"`
	Year  float64 `json:"year"` // fractional year, e.g. 2021.25
	Value float64 `json:"value"`
}

// EmpiricalGrowthModel is a fitted growth model over one analysis window.
// All series are ordered earliest to latest and, when ValidFitting is true,
// X, Y, YTrendline and YCyclic have the same length.
type EmpiricalGrowthModel struct {
	ModelType GrowthModelKind `json:"model_type"`
	Duration  float64         `json:"duration"`

	// Nil for the pure cyclical model, which has no trendline.
	AnnualGrowthRateOfTrendline *float64 `json:"annual_growth_rate_of_trendline,omitempty"`

	R2          float64  `json:"r2"`
	R2Trendline float64  `json:"r2_trendline"`
	R2Cyclic    *float64 `json:"r2_cyclic,omitempty"` // nil when no cyclical component was fitted

	ValidFitting bool `json:"valid_fitting"`
	OutlierCount int  `json:"outlier_count"`

	// Bias offset, intercept or initial value, growth rate, then one
	// (sin, cos) coefficient pair per harmonic.
	Parameters Series `json:"parameters"`

	X                          Series `json:"x"`
	Y                          Series `json:"y"`
	YTrendline                 Series `json:"y_trendline"`
	YCyclic                    Series `json:"y_cyclic"`
	YCyclicData                Series `json:"y_cyclic_data,omitempty"`
	YCyclicNorm                Series `json:"y_cyclic_norm,omitempty"`
	YCyclicNormData            Series `json:"y_cyclic_norm_data,omitempty"`
	YCyclicNormDataPercentiles Series `json:"y_cyclic_norm_data_percentiles,omitempty"`
}

// GrowthRate returns the trendline growth rate, or NaN when the model has none.
func (m EmpiricalGrowthModel) GrowthRate() float64 {
	if m.AnnualGrowthRateOfTrendline == nil {
		return math.NaN()
	}
	return *m.AnnualGrowthRateOfTrendline
}

// Harmonics returns the number of (sin, cos) pairs held in Parameters.
func (m EmpiricalGrowthModel) Harmonics() int {
	if len(m.Parameters) <= TrendParameterCount {
		return 0
	}
	return (len(m.Parameters) - TrendParameterCount) / 2
}

// TrendParameterCount is the number of leading trend coefficients in
// EmpiricalGrowthModel.Parameters.
const TrendParameterCount = 3

// MarshalJSON renders non-finite goodness-of-fit values as null.
func (m EmpiricalGrowthModel) MarshalJSON() ([]byte, error) {
	type alias EmpiricalGrowthModel
	out := struct {
		alias
		R2          *float64 `json:"r2"`
		R2Trendline *float64 `json:"r2_trendline"`
		R2Cyclic    *float64 `json:"r2_cyclic,omitempty"`
	}{
		alias:       alias(m),
		R2:          Finite(m.R2),
		R2Trendline: Finite(m.R2Trendline),
	}
	if m.R2Cyclic != nil {
		out.R2Cyclic = Finite(*m.R2Cyclic)
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores null goodness-of-fit values as NaN.
func (m *EmpiricalGrowthModel) UnmarshalJSON(data []byte) error {
	type alias EmpiricalGrowthModel
	var in struct {
		alias
		R2          *float64 `json:"r2"`
		R2Trendline *float64 `json:"r2_trendline"`
		R2Cyclic    *float64 `json:"r2_cyclic,omitempty"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = EmpiricalGrowthModel(in.alias)
	m.R2 = orNaN(in.R2)
	m.R2Trendline = orNaN(in.R2Trendline)
	m.R2Cyclic = in.R2Cyclic
	return nil
}

// MetricGrowthEntry is one fitted window of a metric's history.
type MetricGrowthEntry struct {
	Date             string               `json:"date"` // anchor (most recent) date of the window
	Year             float64              `json:"year"`
	AnnualGrowthRate float64              `json:"annual_growth_rate"`
	Model            EmpiricalGrowthModel `json:"model"`
}

// MetricGrowthDataSet holds the growth models of a metric, most recent window first.
type MetricGrowthDataSet struct {
	Metric  string              `json:"metric"`
	Entries []MetricGrowthEntry `json:"entries"`
}

// Latest returns the most recent entry.
func (d MetricGrowthDataSet) Latest() (MetricGrowthEntry, bool) {
	if len(d.Entries) == 0 {
		return MetricGrowthEntry{}, false
	}
	return d.Entries[0], true
}

// EmpiricalGrowthEntry extends a growth window of after-tax operating income
// with the reinvestment statistics of the same window.
type EmpiricalGrowthEntry struct {
	MetricGrowthEntry

	ReinvestmentRateMean    *float64 `json:"reinvestment_rate_mean,omitempty"`
	ReinvestmentRateStdDev  *float64 `json:"reinvestment_rate_std_dev,omitempty"`
	ReturnOnInvestedCapital *float64 `json:"return_on_invested_capital,omitempty"`
}

// EmpiricalGrowthDataSet holds after-tax operating income growth windows, most recent first.
type EmpiricalGrowthDataSet struct {
	Entries []EmpiricalGrowthEntry `json:"entries"`
}

// Latest returns the most recent entry.
func (d EmpiricalGrowthDataSet) Latest() (EmpiricalGrowthEntry, bool) {
	if len(d.Entries) == 0 {
		return EmpiricalGrowthEntry{}, false
	}
	return d.Entries[0], true
}

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
