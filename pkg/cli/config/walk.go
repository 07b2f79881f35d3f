package config

import "github.com/urfave/cli/v3"

// Walk holds settings of the umbrella build walk
type Walk struct {
	ConfigPath  string
	MaxBuilds   int
	Concurrency int
	DryRun      bool
}

// Flags returns CLI flags for walk configuration
func (c *Walk) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the products configuration file (.toml, .yaml or .yml)",
			Required:    true,
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("HERALD_CONFIG"),
		},
		&cli.IntFlag{
			Name:        "max-builds",
			Usage:       "Maximum number of umbrella builds fetched for a product with no published notification",
			Value:       50,
			Destination: &c.MaxBuilds,
			Sources:     cli.EnvVars("HERALD_MAX_BUILDS"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of parent commits resolved in parallel",
			Value:       8,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("HERALD_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Log notifications instead of creating issues",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("HERALD_DRY_RUN"),
		},
	}
}
