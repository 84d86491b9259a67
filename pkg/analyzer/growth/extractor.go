// Package growth selects empirical growth models for a metric and extracts
// them over sliding windows of its report history.
package growth

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/panbanda/fundgrowth/pkg/models"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"
)

// Extractor carves a metric history into analysis windows and fits a growth
// model to each. An Extractor holds no mutable state and is safe for
// concurrent use.
type Extractor struct {
	settings   models.EmpiricalGrowthSettings
	maxWorkers int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxWorkers bounds the number of windows fitted concurrently.
// Values <= 0 use NumCPU.
func WithMaxWorkers(n int) Option {
	return func(e *Extractor) {
		e.maxWorkers = n
	}
}

// New creates an Extractor. Settings that fail validation are a
// configuration error: no extraction can be meaningful with them.
func New(settings models.EmpiricalGrowthSettings, opts ...Option) (*Extractor, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	e := &Extractor{
		settings:   settings,
		maxWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxWorkers <= 0 {
		e.maxWorkers = runtime.NumCPU()
	}
	return e, nil
}

// Settings returns the settings the Extractor was created with.
func (e *Extractor) Settings() models.EmpiricalGrowthSettings {
	return e.settings
}

// Window is one analysis window of a metric history.
type Window struct {
	Anchor models.SamplePoint   // most recent point of the window
	Points []models.SamplePoint // earliest first
}

// X returns the fractional-year dates of the window.
func (w Window) X() []float64 {
	x := make([]float64, len(w.Points))
	for i, p := range w.Points {
		x[i] = p.Year
	}
	return x
}

// Y returns the metric values of the window.
func (w Window) Y() []float64 {
	y := make([]float64, len(w.Points))
	for i, p := range w.Points {
		y[i] = p.Value
	}
	return y
}

// Windows returns the analysis windows of points, most recent anchor first.
//
// Points with a non-finite date or value are ignored. In one-window mode the
// whole history is a single window. Otherwise every point is tried as an
// anchor: the window collects the anchor and the older points no further
// back than the growth interval plus the date tolerance, and is kept only
// if its oldest point reaches back at least the growth interval minus the
// tolerance.
func (e *Extractor) Windows(points []models.SamplePoint) []Window {
	pts := latestFirst(points)
	if len(pts) == 0 {
		return nil
	}

	if e.settings.CalcOneGrowthRateForAllData {
		return []Window{{Anchor: pts[0], Points: earliestFirst(pts)}}
	}

	interval := e.settings.GrowthIntervalInYears
	tol := e.settings.MaxDateErrorInYears()

	var windows []Window
	for i := range pts {
		j := i
		for j+1 < len(pts) && pts[i].Year-pts[j+1].Year <= interval+tol {
			j++
		}
		if pts[i].Year-pts[j].Year < interval-tol {
			continue
		}
		windows = append(windows, Window{Anchor: pts[i], Points: earliestFirst(pts[i : j+1])})
	}
	return windows
}

// ExtractMetricGrowthRates fits a growth model to every window of points.
// Windows without a valid model are left out of the result.
func (e *Extractor) ExtractMetricGrowthRates(metric string, points []models.SamplePoint) models.MetricGrowthDataSet {
	windows := e.Windows(points)
	fitted := e.fitWindows(windows)

	ds := models.MetricGrowthDataSet{Metric: metric}
	for i, m := range fitted {
		if m == nil {
			continue
		}
		ds.Entries = append(ds.Entries, entryFor(windows[i], *m))
	}
	return ds
}

// ExtractOperatingIncomeGrowthRates fits growth models to after-tax
// operating income and pairs each window with the mean and standard
// deviation of the reinvestment rates reported at the window's dates, and
// with ROIC = growth / mean reinvestment rate.
func (e *Extractor) ExtractOperatingIncomeGrowthRates(income, reinvestment []models.SamplePoint) models.EmpiricalGrowthDataSet {
	rates := make(map[string]float64, len(reinvestment))
	for _, p := range reinvestment {
		if isFinite(p.Value) {
			rates[p.Date] = p.Value
		}
	}

	windows := e.Windows(income)
	fitted := e.fitWindows(windows)

	var ds models.EmpiricalGrowthDataSet
	for i, m := range fitted {
		if m == nil {
			continue
		}
		entry := models.EmpiricalGrowthEntry{MetricGrowthEntry: entryFor(windows[i], *m)}

		var window []float64
		for _, p := range windows[i].Points {
			if r, ok := rates[p.Date]; ok {
				window = append(window, r)
			}
		}
		if len(window) > 0 {
			mean, sd := stat.MeanStdDev(window, nil)
			entry.ReinvestmentRateMean = models.Finite(mean)
			entry.ReinvestmentRateStdDev = models.Finite(sd)
			if mean != 0 {
				entry.ReturnOnInvestedCapital = models.Finite(entry.AnnualGrowthRate / mean)
			}
		}
		ds.Entries = append(ds.Entries, entry)
	}
	return ds
}

// fitWindows fits every window concurrently. The result is aligned with
// windows; nil marks a window without a valid model.
func (e *Extractor) fitWindows(windows []Window) []*models.EmpiricalGrowthModel {
	results := make([]*models.EmpiricalGrowthModel, len(windows))
	if len(windows) == 0 {
		return results
	}

	p := pool.New().WithMaxGoroutines(e.maxWorkers)
	for i, w := range windows {
		p.Go(func() {
			m, ok := SelectModel(w.X(), w.Y(), e.settings)
			if ok {
				results[i] = &m
			}
		})
	}
	p.Wait()
	return results
}

func entryFor(w Window, m models.EmpiricalGrowthModel) models.MetricGrowthEntry {
	return models.MetricGrowthEntry{
		Date:             w.Anchor.Date,
		Year:             w.Anchor.Year,
		AnnualGrowthRate: m.GrowthRate(),
		Model:            m,
	}
}

// latestFirst returns the finite points of in, most recent first.
func latestFirst(in []models.SamplePoint) []models.SamplePoint {
	out := make([]models.SamplePoint, 0, len(in))
	for _, p := range in {
		if isFinite(p.Year) && isFinite(p.Value) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year > out[j].Year
	})
	return out
}

// earliestFirst returns a reversed copy of latest-first points.
func earliestFirst(pts []models.SamplePoint) []models.SamplePoint {
	out := make([]models.SamplePoint, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String describes a window for diagnostics.
func (w Window) String() string {
	if len(w.Points) == 0 {
		return "window(empty)"
	}
	return fmt.Sprintf("window(%s..%s, %d points)", w.Points[0].Date, w.Anchor.Date, len(w.Points))
}
