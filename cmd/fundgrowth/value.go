package main

import (
	"fmt"
	"math"

	"github.com/panbanda/fundgrowth/internal/output"
	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/panbanda/fundgrowth/pkg/valuation"
	"github.com/urfave/cli/v2"
)

func valueCmd() *cli.Command {
	return &cli.Command{
		Name:      "value",
		Usage:     "Discounted cash flow valuation from the latest growth window",
		ArgsUsage: "<file...>",
		Flags: append(growthFlags(),
			&cli.StringFlag{
				Name:    "metric",
				Aliases: []string{"m"},
				Value:   fundamental.SectionCashFlow + "/" + fundamental.FieldFreeCashFlow,
				Usage:   "Cash flow to project: field, Section/field or Category/Section/TimeUnit/field",
			},
			&cli.BoolFlag{
				Name:  "sustainable",
				Usage: "Project with ROIC x reinvestment rate instead of the fitted trend",
			},
			&cli.Float64Flag{
				Name:  "discount-rate",
				Usage: "Annual discount rate (default from config)",
			},
			&cli.IntFlag{
				Name:  "years",
				Usage: "Projection years (default from config)",
			},
		),
		Action: runValueCmd,
	}
}

func runValueCmd(c *cli.Context) error {
	files, err := requireFiles(c)
	if err != nil {
		return err
	}
	cfg, err := growthConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("discount-rate") {
		cfg.Valuation.DiscountRate = c.Float64("discount-rate")
	}
	if c.IsSet("years") {
		cfg.Valuation.Years = c.Int("years")
	}
	metric, err := resolveMetric(c.String("metric"), cfg.Series.TimeUnit)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}

	sustainable := c.Bool("sustainable")
	sections, err := s.eachDocument("Valuing", files, func(path string) (output.Renderable, error) {
		store, err := fundamental.Load(path)
		if err != nil {
			return nil, err
		}
		return s.value(store, path, metric, sustainable)
	})
	if err != nil {
		return err
	}
	return s.write(c, "Discounted Cash Flow", sections)
}

func (s *session) value(store *fundamental.Store, path string, metric fundamental.FieldPath, sustainable bool) (output.Renderable, error) {
	v := s.cfg.Valuation

	ds, points, err := s.metricGrowth(store, metric)
	if err != nil {
		return nil, err
	}
	latest, ok := ds.Latest()
	if !ok {
		return nil, fmt.Errorf("no valid growth model for %s", metric)
	}

	growth, ok := valuation.ProjectionGrowth(latest.Model, v.MaxGrowth)
	source := latest.Model.ModelType.String() + " trend"
	if sustainable {
		oi, err := s.operatingIncomeGrowth(store)
		if err != nil {
			return nil, err
		}
		entry, found := oi.Latest()
		if !found {
			return nil, fmt.Errorf("no valid after-tax operating income growth model")
		}
		growth, ok = valuation.FundamentalGrowth(entry)
		growth = capGrowth(growth, v.MaxGrowth)
		source = "ROIC x reinvestment"
	}
	if !ok {
		return nil, fmt.Errorf("no projection growth for %s", metric)
	}

	res, err := valuation.DiscountedCashFlow(valuation.DCFInput{
		CashFlow:       points[0].Value,
		Growth:         growth,
		Years:          v.Years,
		DiscountRate:   v.DiscountRate,
		TerminalGrowth: v.TerminalGrowth,
	})
	if err != nil {
		return nil, err
	}

	rows := [][]string{
		{"Report date", points[0].Date},
		{"Cash flow", fmt.Sprintf("%.2f", points[0].Value)},
		{"Growth source", source},
		{"Discount rate", fmt.Sprintf("%.2f%%", v.DiscountRate*100)},
		{"Terminal growth", fmt.Sprintf("%.2f%%", v.TerminalGrowth*100)},
	}
	inputs := map[string]any{
		"date":            points[0].Date,
		"cash_flow":       points[0].Value,
		"growth_source":   source,
		"discount_rate":   v.DiscountRate,
		"terminal_growth": v.TerminalGrowth,
	}
	if coverage, ok := valuation.InterestCoverage(store, s.cfg.Series.TimeUnit, latest.Date).Get(); ok {
		if interval, found := v.SpreadTable.Lookup(coverage); found {
			cost, _ := v.SpreadTable.CostOfDebt(v.RiskFreeRate, coverage)
			rows = append(rows,
				[]string{"Rating", interval.Rating},
				[]string{"Cost of debt", fmt.Sprintf("%.2f%%", cost*100)},
			)
			inputs["rating"] = interval.Rating
			inputs["cost_of_debt"] = cost
		}
	}

	title := documentTitle(store, path, metric.Field)
	inputTable := output.NewTable(title+" inputs", []string{"Input", "Value"}, rows, nil, inputs)
	inputTable.Labels = 1
	return &output.Report{
		Sections: []output.Renderable{
			inputTable,
			output.NewValuationTable(title+" valuation", growth, res),
		},
	}, nil
}

// capGrowth bounds g to ±maxGrowth; a non-positive maxGrowth disables the cap.
func capGrowth(g, maxGrowth float64) float64 {
	if maxGrowth <= 0 || math.IsNaN(g) {
		return g
	}
	return math.Max(-maxGrowth, math.Min(maxGrowth, g))
}
