package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/labkey/pushdist/pkg/cli/config"
	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/infra/console"
	"github.com/labkey/pushdist/pkg/infra/labkey"
	"github.com/labkey/pushdist/pkg/infra/slack"
	"github.com/labkey/pushdist/pkg/infra/storage"
	"github.com/labkey/pushdist/pkg/infra/teamcity"
	"github.com/labkey/pushdist/pkg/usecase"
)

func runPublish(ctx context.Context, c *cli.Command, envCfg *config.Environment, publishCfg *config.Publish, slackCfg *config.Slack) error {
	logger := ctxlog.From(ctx)

	if c.NArg() != 1 {
		return goerr.New("exactly one update type is required: trunk, monthly, snapshot or release",
			goerr.V("args", c.Args().Slice()))
	}

	opts, err := publishCfg.Options(c.Args().First())
	if err != nil {
		return err
	}

	env, err := envCfg.Load()
	if err != nil {
		return err
	}
	logger.Info("Loaded environment",
		"environment", env.Name,
		"server", env.ServerURL(),
		"cache_dir", env.CacheDir,
		"bucket", env.Bucket,
	)

	uc, err := newPublishUseCase(ctx, env, opts, slackCfg)
	if err != nil {
		return err
	}
	return uc.Run(ctx, opts)
}

func newPublishUseCase(ctx context.Context, env *model.Environment, opts model.PublishOptions, slackCfg *config.Slack) (interfaces.PublishUseCase, error) {
	logger := ctxlog.From(ctx)

	tcAuth, err := config.LoadTeamCityCredentials(config.TeamCityCredentialPath(), env.TeamCityHost())
	if err != nil {
		return nil, err
	}
	var tcOpts []teamcity.Option
	if tcAuth != nil {
		logger.Info("Using TeamCity credentials", "credentials", tcAuth)
		tcOpts = append(tcOpts, teamcity.WithBasicAuth(tcAuth.Login, tcAuth.Password))
	} else {
		logger.Info("No TeamCity credentials found, using guest access")
	}

	lkAuth, err := config.LoadNetrcCredentials(config.NetrcPath(), env.ServerHost)
	if err != nil {
		return nil, err
	}
	var lkOpts []labkey.Option
	if lkAuth != nil {
		logger.Info("Using LabKey credentials", "credentials", lkAuth)
		lkOpts = append(lkOpts, labkey.WithBasicAuth(lkAuth.Login, lkAuth.Password))
	}

	ucOpts := []usecase.Option{
		usecase.WithLinkBuilder(func(key string) string {
			return storage.PublicURL(env.Bucket, key)
		}),
	}

	if opts.StorageEnabled() {
		store, err := newStorage(ctx, env)
		if err != nil {
			return nil, err
		}
		ucOpts = append(ucOpts, usecase.WithStorage(store), usecase.WithLinkBuilder(store.URL))
	}

	if slackCfg.WebhookURL != "" {
		ucOpts = append(ucOpts, usecase.WithNotifier(slack.NewNotifier(slackCfg.WebhookURL)))
	}

	return usecase.NewPublish(env,
		teamcity.NewClient(env.TeamCityURL, tcOpts...),
		labkey.NewClient(env.ServerURL(), env.SlashContextPath(), lkOpts...),
		console.New(os.Stdin, os.Stdout),
		ucOpts...,
	), nil
}

// newStorage opens the upload bucket. GCS buckets use application default
// credentials; S3 buckets need the environment's credential file.
func newStorage(ctx context.Context, env *model.Environment) (interfaces.ObjectStorage, error) {
	if storage.IsGCS(env.Bucket) {
		return storage.New(ctx, env.Bucket, env.BucketRegion)
	}

	if env.CredentialFile == "" {
		return nil, goerr.New("S3CredentialFilePath is not set", goerr.V("environment", env.Name))
	}
	creds, err := config.LoadStorageCredentials(env.CredentialFile)
	if err != nil {
		return nil, err
	}
	ctxlog.From(ctx).Info("Loaded storage credentials", "credentials", creds)
	if err := creds.Export(); err != nil {
		return nil, err
	}

	return storage.New(ctx, env.Bucket, env.BucketRegion,
		storage.WithStaticCredentials(creds.AccessKeyID, creds.SecretKey))
}
