package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults, the config file and
global flags.

Examples:
  fundgrowth config show
  fundgrowth -c fundgrowth.toml config show`,
				Action: runConfigShowCmd,
			},
			{
				Name:  "validate",
				Usage: "Validate the configuration",
				Description: `Validates the configuration for syntax errors and values that
would make growth extraction meaningless, such as an unknown model type
or a discontinuous default spread table.`,
				Action: runConfigValidateCmd,
			},
		},
	}
}

func runConfigShowCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = c.App.Writer.Write(content)
	return err
}

func runConfigValidateCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		color.Red("Configuration validation failed:")
		return err
	}
	if err := cfg.Validate(); err != nil {
		color.Red("Configuration validation failed:")
		return err
	}

	if path := c.String("config"); path != "" {
		color.Green("Configuration valid: %s", path)
	} else {
		color.Green("Configuration valid")
	}
	return nil
}
