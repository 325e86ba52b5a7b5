package config

import "github.com/urfave/cli/v3"

// Slack holds notification configuration
type Slack struct {
	WebhookURL string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook notified after each customer is published",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("PUSHDIST_SLACK_WEBHOOK_URL"),
		},
	}
}
