package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/fundgrowth/internal/cache"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached extraction results",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached results",
				Action: runCacheClearCmd,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return nil, fmt.Errorf("cache is disabled")
	}
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
}

func runCacheStatsCmd(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := ch.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Entries: %d\nSize:    %d bytes\n", stats.Entries, stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(c.App.Writer, "Oldest:  %s\nNewest:  %s\n", stats.OldestAge.Round(time.Second), stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClearCmd(c *cli.Context) error {
	ch, err := openCache(c)
	if err != nil {
		return err
	}
	if err := ch.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	color.Green("Cache cleared")
	return nil
}
