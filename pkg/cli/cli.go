package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/labkey/pushdist/pkg/cli/config"
	"github.com/labkey/pushdist/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg  config.Logger
		envCfg     config.Environment
		publishCfg config.Publish
		slackCfg   config.Slack
		sentryCfg  config.Sentry
		logger     *slog.Logger
	)

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, envCfg.Flags()...)
	flags = append(flags, publishCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:      "pushdist",
		Usage:     "Push binary distribution files to customer download pages",
		UsageText: "pushdist [options] <trunk|monthly|snapshot|release>",
		Version:   types.Version,
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runPublish(ctx, c, &envCfg, &publishCfg, &slackCfg)
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		if errors.Is(err, types.ErrCancelled) {
			logger.Info("Publishing cancelled by operator")
			return err
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Report(err)
		return err
	}

	return nil
}
