package main

import (
	"github.com/panbanda/fundgrowth/internal/output"
	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/urfave/cli/v2"
)

func fitCmd() *cli.Command {
	return &cli.Command{
		Name:      "fit",
		Usage:     "Fit empirical growth models to a metric over sliding windows",
		ArgsUsage: "<file...>",
		Flags: append(growthFlags(),
			&cli.StringFlag{
				Name:    "metric",
				Aliases: []string{"m"},
				Value:   fundamental.FieldOperatingIncome,
				Usage:   "Metric to fit: field, Section/field or Category/Section/TimeUnit/field",
			},
		),
		Action: runFitCmd,
	}
}

func runFitCmd(c *cli.Context) error {
	files, err := requireFiles(c)
	if err != nil {
		return err
	}
	cfg, err := growthConfig(c)
	if err != nil {
		return err
	}
	metric, err := resolveMetric(c.String("metric"), cfg.Series.TimeUnit)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	detail := c.Bool("detail")
	sections, err := s.eachDocument("Fitting", files, func(path string) (output.Renderable, error) {
		store, err := fundamental.Load(path)
		if err != nil {
			return nil, err
		}
		ds, _, err := s.metricGrowth(store, metric)
		if err != nil {
			return nil, err
		}
		title := documentTitle(store, path, metric.Field)
		table := output.NewMetricGrowthTable(title, ds, detail)
		if latest, ok := ds.Latest(); ok && detail {
			return output.NewDetailedReport(table, output.NewFittedSeriesTable(title+" fit at "+latest.Date, latest.Model)), nil
		}
		return table, nil
	})
	if err != nil {
		return err
	}
	return s.write(c, "Empirical Growth", sections)
}
