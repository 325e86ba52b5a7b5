package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/labkey/pushdist/pkg/domain/types"
)

const sentryFlushTimeout = 5 * time.Second

// Sentry holds error reporting configuration. Reporting is off without a DSN.
type Sentry struct {
	DSN string
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN that receives fatal publishing errors",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("PUSHDIST_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Destination: &c.Env,
			Sources:     cli.EnvVars("PUSHDIST_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "pushdist@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry", goerr.V("env", c.Env))
	}
	return nil
}

// Report sends err to Sentry and waits for delivery.
func (c *Sentry) Report(err error) {
	if c.DSN == "" || err == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(sentryFlushTimeout)
}
