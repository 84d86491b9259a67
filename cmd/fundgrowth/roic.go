package main

import (
	"github.com/panbanda/fundgrowth/internal/output"
	"github.com/panbanda/fundgrowth/pkg/fundamental"
	"github.com/urfave/cli/v2"
)

func roicCmd() *cli.Command {
	return &cli.Command{
		Name:      "roic",
		Usage:     "Fit after-tax operating income growth with reinvestment rate and ROIC per window",
		ArgsUsage: "<file...>",
		Flags:     growthFlags(),
		Action:    runROICCmd,
	}
}

func runROICCmd(c *cli.Context) error {
	files, err := requireFiles(c)
	if err != nil {
		return err
	}
	cfg, err := growthConfig(c)
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
		ds, err := s.operatingIncomeGrowth(store)
		if err != nil {
			return nil, err
		}
		title := documentTitle(store, path, "after-tax operating income")
		table := output.NewOperatingIncomeTable(title, ds, detail)
		if latest, ok := ds.Latest(); ok && detail {
			return output.NewDetailedReport(table, output.NewFittedSeriesTable(title+" fit at "+latest.Date, latest.Model)), nil
		}
		return table, nil
	})
	if err != nil {
		return err
	}
	return s.write(c, "Return on Invested Capital", sections)
}
