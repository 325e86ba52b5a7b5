package interfaces

import (
	"context"

	"github.com/labkey/pushdist/pkg/domain/model"
)

// TeamCityClient defines read access to the CI server
type TeamCityClient interface {
	// GetManifest fetches the artifact listing of a build
	GetManifest(ctx context.Context, buildType, buildID string) (*model.ArtifactManifest, error)

	// GetBuildInfo fetches completion metadata of the last successful build of buildType
	GetBuildInfo(ctx context.Context, buildType string) (*model.BuildInfo, error)

	// Download stores the artifact at relPath under destDir, mirroring the CI path layout
	Download(ctx context.Context, buildType, buildID, relPath, destDir string) (string, error)
}
