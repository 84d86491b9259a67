// Package cyclical decomposes a series into a finite sum of harmonics over
// its time span and layers that decomposition on top of a trendline.
package cyclical

import (
	"math"
	"sort"

	"github.com/panbanda/fundgrowth/pkg/analyzer/regression"
	"github.com/panbanda/fundgrowth/pkg/models"
	"github.com/panbanda/fundgrowth/pkg/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// NormEpsilon is the fraction of the largest trendline magnitude below which
// a trendline value is treated as zero when normalizing the cyclical
// component. Normalized values at such points are NaN.
const NormEpsilon = 1e-9

// Harmonics returns the number of harmonics fitted over span years when the
// shortest period of interest is minCyclePeriod years, rounded half away
// from zero.
func Harmonics(span, minCyclePeriod float64) int {
	if !(span > 0) || !(minCyclePeriod > 0) {
		return 0
	}
	return int(math.Round(span / minCyclePeriod))
}

// FitCyclicalModel fits sum_k s_k*sin(2πk·t) + c_k*cos(2πk·t) to y, where t
// is x normalized to [0,1] over the span and k = 1..Harmonics(span, minCyclePeriod).
//
// Each coefficient is the projection (2/span)∫y(t)·basis dt evaluated with
// the trapezoidal rule on the actual time axis. Harmonics are estimated one
// at a time: the contribution of harmonic k is subtracted from the running
// residual before harmonic k+1 is projected.
//
// x must be ordered earliest first or latest first; other orders give a
// model that is not valid.
func FitCyclicalModel(x, y []float64, minCyclePeriod float64) models.EmpiricalGrowthModel {
	m := models.EmpiricalGrowthModel{ModelType: models.CyclicalModel}
	if len(x) != len(y) || len(x) < regression.MinPoints {
		return m
	}

	xs, ys := regression.Ordered(x, y)
	bias := xs[0]
	span := xs[len(xs)-1] - bias
	if !(span > 0) || !sort.Float64sAreSorted(xs) {
		return m
	}

	n := Harmonics(span, minCyclePeriod)
	t := make([]float64, len(xs))
	for i, v := range xs {
		t[i] = (v - bias) / span
	}

	residual := make([]float64, len(ys))
	copy(residual, ys)
	fitted := make([]float64, len(ys))
	params := models.Series{bias, math.NaN(), math.NaN()}

	sinBasis := make([]float64, len(t))
	cosBasis := make([]float64, len(t))
	integrand := make([]float64, len(t))
	for k := 1; k <= n; k++ {
		omega := 2 * math.Pi * float64(k)
		for i, ti := range t {
			sinBasis[i] = math.Sin(omega * ti)
			cosBasis[i] = math.Cos(omega * ti)
		}

		floats.MulTo(integrand, residual, sinBasis)
		s := 2 / span * integrate.Trapezoidal(xs, integrand)
		floats.MulTo(integrand, residual, cosBasis)
		c := 2 / span * integrate.Trapezoidal(xs, integrand)
		params = append(params, s, c)

		for i := range residual {
			v := s*sinBasis[i] + c*cosBasis[i]
			fitted[i] += v
			residual[i] -= v
		}
	}

	r2 := regression.MustR2(fitted, ys)
	m.Duration = span
	m.Parameters = params
	m.R2 = r2
	m.R2Cyclic = models.Float(r2)
	m.R2Trendline = math.NaN()
	m.X = models.Series(xs)
	m.Y = models.Series(fitted)
	m.YTrendline = make(models.Series, len(xs))
	m.YCyclic = models.Series(fitted).Clone()
	m.YCyclicData = models.Series(ys)
	m.ValidFitting = true
	return m
}

// FitCyclicalModelWithLinearBaseline fits a linear trendline, decomposes
// the residual cyclically and recombines both.
func FitCyclicalModelWithLinearBaseline(x, y []float64, minCyclePeriod float64) models.EmpiricalGrowthModel {
	trend := regression.FitLinearGrowthModel(x, y, false)
	return withBaseline(models.LinearCyclicalModel, trend, x, y, minCyclePeriod)
}

// FitCyclicalModelWithExponentialBaseline fits an exponential trendline,
// decomposes the residual cyclically and recombines both.
func FitCyclicalModelWithExponentialBaseline(x, y []float64, minCyclePeriod, maxOutlierProportion float64) models.EmpiricalGrowthModel {
	trend := regression.FitExponentialGrowthModel(x, y, maxOutlierProportion)
	return withBaseline(models.ExponentialCyclicalModel, trend, x, y, minCyclePeriod)
}

func withBaseline(kind models.GrowthModelKind, trend models.EmpiricalGrowthModel, x, y []float64, minCyclePeriod float64) models.EmpiricalGrowthModel {
	if !trend.ValidFitting {
		trend.ModelType = kind
		return trend
	}

	_, data := regression.Ordered(x, y)
	residual := make([]float64, len(data))
	floats.SubTo(residual, data, trend.YTrendline)

	cyc := FitCyclicalModel(trend.X, residual, minCyclePeriod)
	if !cyc.ValidFitting {
		trend.ModelType = kind
		trend.ValidFitting = false
		return trend
	}

	combined := make([]float64, len(data))
	floats.AddTo(combined, trend.YTrendline, cyc.YCyclic)

	m := trend
	m.ModelType = kind
	m.Parameters = append(trend.Parameters.Clone(), cyc.Parameters[models.TrendParameterCount:]...)
	m.Y = models.Series(combined)
	m.R2 = regression.MustR2(combined, data)
	m.R2Cyclic = cyc.R2Cyclic
	m.YCyclic = cyc.YCyclic
	m.YCyclicData = models.Series(residual)
	m.YCyclicNorm = normalize(cyc.YCyclic, trend.YTrendline)
	m.YCyclicNormData = normalize(residual, trend.YTrendline)
	m.YCyclicNormDataPercentiles = models.Series(stats.MapToPercentiles(residual))
	return m
}

// normalize divides v by trend elementwise. Where the trendline is within
// NormEpsilon of zero relative to its largest magnitude the result is NaN.
func normalize(v, trend []float64) models.Series {
	var peak float64
	for _, t := range trend {
		peak = math.Max(peak, math.Abs(t))
	}
	eps := NormEpsilon * peak

	out := make(models.Series, len(v))
	for i := range v {
		if math.Abs(trend[i]) <= eps {
			out[i] = math.NaN()
			continue
		}
		out[i] = v[i] / trend[i]
	}
	return out
}
