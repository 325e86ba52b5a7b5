package config

import (
	"github.com/urfave/cli/v3"

	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

// Publish holds the per-run switches of the publish command
type Publish struct {
	Customer     string
	BuildID      string
	Message      string
	SafeMode     bool
	NoAWS        bool
	SkipDownload bool
}

// Flags returns CLI flags for publish options
func (c *Publish) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "customer",
			Aliases:     []string{"c"},
			Usage:       "Customer's download page to update. If not specified the build is pushed to all customers",
			Destination: &c.Customer,
			Sources:     cli.EnvVars("PUSHDIST_CUSTOMER"),
		},
		&cli.StringFlag{
			Name:        "buildid",
			Aliases:     []string{"b"},
			Usage:       "TeamCity build id to publish. If not specified the last successful build is used",
			Destination: &c.BuildID,
			Sources:     cli.EnvVars("PUSHDIST_BUILD_ID"),
		},
		&cli.BoolFlag{
			Name:        "do-not-download",
			Aliases:     []string{"d"},
			Usage:       "Do not download the client API from TeamCity. Use previously downloaded bits",
			Destination: &c.SkipDownload,
		},
		&cli.BoolFlag{
			Name:        "safe-mode",
			Aliases:     []string{"x"},
			Usage:       "Do not talk to S3 or write messages to the wiki/message board",
			Destination: &c.SafeMode,
		},
		&cli.BoolFlag{
			Name:        "no-aws",
			Aliases:     []string{"n"},
			Usage:       "Do not talk to S3",
			Destination: &c.NoAWS,
		},
		&cli.StringFlag{
			Name:        "message",
			Aliases:     []string{"m"},
			Usage:       "Message shown above the downloadable files on wikis and the message board, preceded by 'NOTE:'",
			Destination: &c.Message,
		},
	}
}

// Options converts the flags into publish options for updateType
func (c *Publish) Options(updateType string) (model.PublishOptions, error) {
	t, err := types.ParseUpdateType(updateType)
	if err != nil {
		return model.PublishOptions{}, err
	}
	return model.PublishOptions{
		UpdateType:   t,
		Customer:     c.Customer,
		BuildID:      c.BuildID,
		Message:      c.Message,
		SafeMode:     c.SafeMode,
		NoAWS:        c.NoAWS,
		SkipDownload: c.SkipDownload,
	}, nil
}
