package interfaces

import (
	"context"

	"github.com/labkey/pushdist/pkg/domain/model"
)

// PublishUseCase defines the download page publishing workflow
type PublishUseCase interface {
	// Run publishes one build to the selected customers' download pages
	Run(ctx context.Context, opts model.PublishOptions) error
}
