package config

import "github.com/urfave/cli/v3"

// AzureDevOps holds Azure DevOps credentials shared by every configured organization
type AzureDevOps struct {
	PAT string `masq:"secret"`
}

// Flags returns CLI flags for Azure DevOps configuration
func (c *AzureDevOps) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "azdo-pat",
			Usage:       "Azure DevOps personal access token with build and code read scope",
			Required:    true,
			Destination: &c.PAT,
			Sources:     cli.EnvVars("HERALD_AZDO_PAT"),
		},
	}
}
