package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/fundgrowth/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

const defaultConfigPath = "fundgrowth.toml"

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration file with the default settings",
		Description: `Creates fundgrowth.toml in the current directory. Use the global
--output flag to choose another location.

Examples:
  fundgrowth init                              # Creates fundgrowth.toml
  fundgrowth -o .fundgrowth/fundgrowth.toml init
  fundgrowth init --force                      # Overwrite existing config file`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Fprintln(c.App.Writer, "Edit this file to customize growth model settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# fundgrowth configuration\n")
	buf.WriteString("# growth.model_type: -1 automatic, 0 exponential, 1 exponential_cyclical, 2 linear, 3 linear_cyclical\n\n")
	buf.Write(content)
	return buf.String(), nil
}
