package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
	"github.com/m-mizutani/herald/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration. Either a token or a GitHub App installation is used.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	PrivateKeyFile string
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used to search and create issues",
			Destination: &c.Token,
			Sources:     cli.EnvVars("HERALD_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (instead of a token)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("HERALD_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("HERALD_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("HERALD_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key-file",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("HERALD_GITHUB_APP_PRIVATE_KEY_FILE"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise or testing)",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("HERALD_GITHUB_BASE_URL"),
		},
	}
}

// NewClient creates a GitHub client from the configured credentials
func (c *GitHub) NewClient() (interfaces.GitHubClient, error) {
	var opts []github.Option
	if c.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.BaseURL))
	}

	if c.Token != "" {
		return github.NewClient(c.Token, opts...)
	}

	if c.AppID == 0 || c.InstallationID == 0 {
		return nil, goerr.New("either --github-token or --github-app-id with --github-app-installation-id is required")
	}

	key := []byte(c.PrivateKey)
	if len(key) == 0 && c.PrivateKeyFile != "" {
		data, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKeyFile))
		}
		key = data
	}
	if len(key) == 0 {
		return nil, goerr.New("GitHub App private key is required", goerr.V("app_id", c.AppID))
	}

	return github.NewAppClient(c.AppID, c.InstallationID, key, opts...)
}
