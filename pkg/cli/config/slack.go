package config

import (
	"github.com/m-mizutani/herald/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds Slack configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run summaries",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("HERALD_SLACK_WEBHOOK_URL"),
		},
	}
}

// NewReporter returns a Slack reporter, or nil when no webhook is configured
func (c *Slack) NewReporter() *slack.Reporter {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewReporter(c.WebhookURL)
}
