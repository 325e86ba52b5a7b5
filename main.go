package main

import (
	"context"
	"errors"
	"os"

	"github.com/labkey/pushdist/pkg/cli"
	"github.com/labkey/pushdist/pkg/domain/types"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, types.ErrCancelled) {
			return
		}
		os.Exit(1)
	}
}
