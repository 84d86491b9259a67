package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/fundgrowth/internal/cache"
	"github.com/panbanda/fundgrowth/internal/output"
	"github.com/panbanda/fundgrowth/internal/progress"
	"github.com/panbanda/fundgrowth/pkg/analyzer/growth"
	"github.com/panbanda/fundgrowth/pkg/config"
	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/panbanda/fundgrowth/pkg/models"
	"github.com/sourcegraph/conc/pool"
	"github.com/urfave/cli/v2"
)

var errNoFiles = errors.New("at least one fundamentals file is required")

// growthFlags are shared by every command that fits growth models.
func growthFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "model",
			Usage: "Growth model: auto, exponential, exponential_cyclical, linear, linear_cyclical (or -1..3)",
		},
		&cli.Float64Flag{
			Name:  "interval",
			Usage: "Window length in years (default from config)",
		},
		&cli.BoolFlag{
			Name:  "one-window",
			Usage: "Fit one model to the whole history instead of sliding windows",
		},
		&cli.BoolFlag{
			Name:  "ttm",
			Usage: "Use trailing-twelve-month sums of quarterly reports",
		},
		&cli.BoolFlag{
			Name:  "detail",
			Usage: "Include fitted series in JSON and TOON output",
		},
	}
}

// loadConfig resolves the configuration of a command: the --config file when
// given, otherwise the standard locations, then global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	} else {
		loaded, err := config.LoadOrDefault()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f := c.String("format"); f != "" {
		cfg.Output.Format = f
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// growthConfig applies the growth flags to the loaded config and validates it.
func growthConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if m := c.String("model"); m != "" {
		sel, err := parseModelSelector(m)
		if err != nil {
			return nil, err
		}
		cfg.Growth.TypeOfEmpiricalModel = sel
	}
	if c.IsSet("interval") {
		cfg.Growth.GrowthIntervalInYears = c.Float64("interval")
	}
	if c.Bool("one-window") {
		cfg.Growth.CalcOneGrowthRateForAllData = true
	}
	if c.Bool("ttm") {
		cfg.Series.TimeUnit = fundamental.TimeUnitQuarterly
		cfg.Series.TrailingTwelveMonths = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseModelSelector accepts "auto", a model name or a numeric selector.
func parseModelSelector(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "automatic":
		return models.AutomaticModelSelection, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n, nil
	}
	kind, err := models.ParseGrowthModelKind(s)
	if err != nil {
		return 0, err
	}
	return int(kind), nil
}

// resolveMetric expands a metric flag to a field path. A bare field name is
// looked up in the income statement and "Section/field" in the given section,
// both at timeUnit; a four-part path is used as is.
func resolveMetric(name, timeUnit string) (fundamental.FieldPath, error) {
	parts := strings.Split(name, "/")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return fundamental.FieldPath{}, errors.New("empty metric")
		}
		return fundamental.Financials(fundamental.SectionIncomeStatement, timeUnit, parts[0]), nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return fundamental.FieldPath{}, fmt.Errorf("invalid metric %q: want Section/field", name)
		}
		return fundamental.Financials(parts[0], timeUnit, parts[1]), nil
	default:
		return fundamental.ParseFieldPath(name)
	}
}

func requireFiles(c *cli.Context) ([]string, error) {
	if c.Args().Len() == 0 {
		return nil, errNoFiles
	}
	return c.Args().Slice(), nil
}

// session holds what one command invocation shares across documents.
type session struct {
	cfg          *config.Config
	extractor    *growth.Extractor
	cache        *cache.Cache
	settingsHash string
}

func newSession(cfg *config.Config) (*session, error) {
	ex, err := growth.New(cfg.Growth, growth.WithMaxWorkers(cfg.Series.Workers))
	if err != nil {
		return nil, err
	}
	ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	hash, err := cache.HashValue(struct {
		Growth models.EmpiricalGrowthSettings `json:"growth"`
		Series config.SeriesConfig            `json:"series"`
		Build  string                         `json:"build"`
	}{cfg.Growth, cfg.Series, version})
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, extractor: ex, cache: ch, settingsHash: hash}, nil
}

func (s *session) workers() int {
	if s.cfg.Series.Workers > 0 {
		return s.cfg.Series.Workers
	}
	return runtime.NumCPU()
}

// metricGrowth extracts the growth windows of one metric, from the cache when
// the series and settings are unchanged.
// The extracted series is returned most recent first.
func (s *session) metricGrowth(store *fundamental.Store, metric fundamental.FieldPath) (models.MetricGrowthDataSet, []models.SamplePoint, error) {
	points := fundamental.ExtractSeries(store, metric, store.Dates(metric), s.cfg.SeriesOptions())
	if len(points) == 0 {
		return models.MetricGrowthDataSet{}, nil, fmt.Errorf("no values for %s", metric)
	}

	key := cache.Key(store.Ticker(), metric.String(), fundamental.Fingerprint(points))
	var ds models.MetricGrowthDataSet
	if s.cache.Load(key, s.settingsHash, &ds) {
		return ds, points, nil
	}

	ds = s.extractor.ExtractMetricGrowthRates(metric.String(), points)
	s.remember(key, ds)
	return ds, points, nil
}

// operatingIncomeGrowth extracts after-tax operating income windows with
// their reinvestment statistics.
func (s *session) operatingIncomeGrowth(store *fundamental.Store) (models.EmpiricalGrowthDataSet, error) {
	unit := s.cfg.Series.TimeUnit
	dates := store.Dates(fundamental.Financials(fundamental.SectionIncomeStatement, unit, fundamental.FieldOperatingIncome))
	income := fundamental.DerivedSeries(store, unit, dates, fundamental.AfterTaxOperatingIncome)
	if len(income) == 0 {
		return models.EmpiricalGrowthDataSet{}, fmt.Errorf("no after-tax operating income in %s reports", unit)
	}
	reinvestment := fundamental.DerivedSeries(store, unit, dates, fundamental.ReinvestmentRate)

	fp := fundamental.Fingerprint(append(append([]models.SamplePoint{}, income...), reinvestment...))
	key := cache.Key(store.Ticker(), "roic/"+unit, fp)
	var ds models.EmpiricalGrowthDataSet
	if s.cache.Load(key, s.settingsHash, &ds) {
		return ds, nil
	}

	ds = s.extractor.ExtractOperatingIncomeGrowthRates(income, reinvestment)
	s.remember(key, ds)
	return ds, nil
}

func (s *session) remember(key string, v any) {
	if err := s.cache.Store(key, s.settingsHash, v); err != nil && s.cfg.Output.Verbose {
		color.Yellow("Warning: failed to cache %s: %v", key, err)
	}
}

// eachDocument processes the documents concurrently and returns the sections
// of the documents that succeeded, in argument order.
func (s *session) eachDocument(label string, files []string, fn func(path string) (output.Renderable, error)) ([]output.Renderable, error) {
	tracker := progress.NewTracker(label, len(files))
	results := make([]output.Renderable, len(files))

	p := pool.New().WithMaxGoroutines(s.workers())
	for i, path := range files {
		p.Go(func() {
			tracker.Describe(filepath.Base(path))
			r, err := fn(path)
			if err != nil {
				tracker.Fail(filepath.Base(path), err)
				return
			}
			results[i] = r
			tracker.Tick()
		})
	}
	p.Wait()
	tracker.Finish()

	sections := make([]output.Renderable, 0, len(results))
	for _, r := range results {
		if r != nil {
			sections = append(sections, r)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("none of the %d documents could be processed", len(files))
	}
	return sections, nil
}

// write renders a report in the configured format.
func (s *session) write(c *cli.Context, title string, sections []output.Renderable) error {
	formatter, err := output.NewFormatter(output.ParseFormat(s.cfg.Output.Format), c.String("output"), s.cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&output.Report{Title: title, Sections: sections})
}

// documentTitle names a document by its ticker, or its file name when the
// document has none.
func documentTitle(store *fundamental.Store, path, what string) string {
	name := store.Ticker()
	if name == "" {
		name = filepath.Base(path)
	}
	return name + " " + what
}
