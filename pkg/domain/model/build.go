package model

import (
	"time"

	"github.com/labkey/pushdist/pkg/domain/types"
)

// LastSuccessfulBuild is the TeamCity locator used when no build id is given.
const LastSuccessfulBuild = ".lastSuccessful"

// BuildSelection identifies which CI build is published. It is resolved once
// from the Releases list and never changes during a run.
type BuildSelection struct {
	UpdateType types.UpdateType
	BuildID    string // TeamCity locator: "<id>:id" or ".lastSuccessful"
	BuildType  string // TeamCity build configuration id
	VersionNum string // e.g. "20.3"
}

// BuildLocator converts an operator-supplied build id into a TeamCity locator.
func BuildLocator(buildID string) string {
	if buildID == "" {
		return LastSuccessfulBuild
	}
	return buildID + ":id"
}

// Release is a row of the Releases list.
type Release struct {
	Version    string // update type name, e.g. "monthly"
	BuildType  string
	VersionNum string
}

// BuildInfo holds completion metadata of the published build.
type BuildInfo struct {
	StartDate time.Time
}

// DisplayDate renders the build date the way download pages show it,
// e.g. "Tuesday Mar 03 2020".
func (x BuildInfo) DisplayDate() string {
	return x.StartDate.Format("Monday Jan 02 2006")
}

// PublishOptions are the per-run switches chosen on the command line.
type PublishOptions struct {
	UpdateType   types.UpdateType
	Customer     string // empty selects every customer
	BuildID      string // empty selects the last successful build
	Message      string
	SafeMode     bool // no storage, wiki or message writes
	NoAWS        bool // no storage access
	SkipDownload bool // keep the cache and skip the shared artifact download
}

// StorageEnabled reports whether object storage may be contacted.
func (x PublishOptions) StorageEnabled() bool {
	return !x.SafeMode && !x.NoAWS
}
