// Package regression fits trendline growth models (linear and exponential)
// to a metric sampled at fractional-year dates.
package regression

import (
	"errors"
	"fmt"
	"math"

	"github.com/panbanda/fundgrowth/pkg/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinPoints is the smallest sample any growth model will fit.
const MinPoints = 3

// ErrLengthMismatch is returned when two series that must be aligned differ in length.
var ErrLengthMismatch = errors.New("series length mismatch")

// CalcR2 returns the coefficient of determination of fitted against reference:
// 1 - SSres/SStot.
//
// A reference with zero variance has no defined R². CalcR2 returns 1 when
// fitted reproduces it exactly and NaN otherwise.
func CalcR2(fitted, reference []float64) (float64, error) {
	if len(fitted) != len(reference) {
		return math.NaN(), fmt.Errorf("%w: fitted has %d values, reference has %d",
			ErrLengthMismatch, len(fitted), len(reference))
	}
	if len(reference) == 0 {
		return math.NaN(), nil
	}

	mean := stat.Mean(reference, nil)
	var ssTot float64
	for _, v := range reference {
		d := v - mean
		ssTot += d * d
	}
	res := floats.Distance(fitted, reference, 2)
	ssRes := res * res

	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return math.NaN(), nil
	}
	return 1 - ssRes/ssTot, nil
}

// MustR2 is CalcR2 for series the caller built to be aligned. A length
// mismatch is a programming error and panics.
func MustR2(fitted, reference []float64) float64 {
	r2, err := CalcR2(fitted, reference)
	if err != nil {
		panic(err)
	}
	return r2
}

// Ordered returns copies of x and y ordered earliest to latest. Input
// ordered latest first is reversed; any other order is kept as given.
func Ordered(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	copy(xs, x)
	copy(ys, y)
	if len(xs) > 1 && xs[0] > xs[len(xs)-1] {
		floats.Reverse(xs)
		floats.Reverse(ys)
	}
	return xs, ys
}

// FitLinearGrowthModel fits y = a + b*w by ordinary least squares, where w is
// x shifted to start at zero. With forceZeroSlope the model is the constant
// mean(y).
//
// The annual growth rate is the slope normalized by the fitted value at the
// end of the window. A window whose end value is zero has no defined growth
// rate and is reported as not valid.
func FitLinearGrowthModel(x, y []float64, forceZeroSlope bool) models.EmpiricalGrowthModel {
	m := models.EmpiricalGrowthModel{ModelType: models.LinearModel}
	if len(x) != len(y) || len(x) < MinPoints {
		return m
	}

	xs, ys := Ordered(x, y)
	bias := xs[0]
	w := shift(xs, bias)
	duration := w[len(w)-1]
	if !(duration > 0) {
		return m
	}

	var intercept, slope float64
	if forceZeroSlope {
		intercept = stat.Mean(ys, nil)
	} else {
		intercept, slope = stat.LinearRegression(w, ys, nil, false)
	}

	fitted := make([]float64, len(w))
	for i, t := range w {
		fitted[i] = intercept + slope*t
	}
	growth := slope / fitted[len(fitted)-1]

	m.Duration = duration
	m.Parameters = models.Series{bias, intercept, slope}
	fillTrend(&m, xs, fitted, ys, growth)
	m.ValidFitting = isFinite(growth)
	return m
}

// FitExponentialGrowthModel fits y = y0*(1+g)^w by linear regression of
// log(y) on w, where w is x shifted to start at zero.
//
// Values below 1 cannot be logged meaningfully; they are counted as outliers
// and clamped to 1 before fitting. The clamp assumes monetary units where a
// value below 1 is negligible. When the outlier proportion exceeds
// maxOutlierProportion the model is not valid.
func FitExponentialGrowthModel(x, y []float64, maxOutlierProportion float64) models.EmpiricalGrowthModel {
	m := models.EmpiricalGrowthModel{ModelType: models.ExponentialModel}
	if len(x) != len(y) || len(x) < MinPoints {
		return m
	}

	xs, ys := Ordered(x, y)
	logY := make([]float64, len(ys))
	for i, v := range ys {
		if v < 1 {
			m.OutlierCount++
			v = 1
		}
		logY[i] = math.Log(v)
	}
	if float64(m.OutlierCount)/float64(len(ys)) > maxOutlierProportion {
		return m
	}

	bias := xs[0]
	w := shift(xs, bias)
	duration := w[len(w)-1]
	if !(duration > 0) {
		return m
	}

	intercept, slope := stat.LinearRegression(w, logY, nil, false)
	growth := math.Exp(slope) - 1
	y0 := math.Exp(intercept)

	fitted := make([]float64, len(w))
	for i, t := range w {
		fitted[i] = y0 * math.Pow(1+growth, t)
	}

	m.Duration = duration
	m.Parameters = models.Series{bias, y0, growth}
	fillTrend(&m, xs, fitted, ys, growth)
	m.ValidFitting = isFinite(growth) && isFinite(y0)
	return m
}

// fillTrend populates the series of a trend-only model.
func fillTrend(m *models.EmpiricalGrowthModel, x, fitted, data []float64, growth float64) {
	r2 := MustR2(fitted, data)
	m.AnnualGrowthRateOfTrendline = models.Float(growth)
	m.R2 = r2
	m.R2Trendline = r2
	m.X = models.Series(x)
	m.Y = models.Series(fitted)
	m.YTrendline = models.Series(fitted).Clone()
	m.YCyclic = make(models.Series, len(x))
}

func shift(x []float64, bias float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = v - bias
	}
	return w
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
