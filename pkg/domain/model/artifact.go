package model

import "fmt"

// ArtifactKind names a recognised download. The string value doubles as the
// template variable name of the artifact.
type ArtifactKind string

const (
	ArtifactWindowsBinary    ArtifactKind = "windowsBinary"
	ArtifactUnixBinary       ArtifactKind = "unixBinary"
	ArtifactJavaClientSrc    ArtifactKind = "javaClientSrc"
	ArtifactJavaClient       ArtifactKind = "javaClient"
	ArtifactJavaScriptClient ArtifactKind = "javaScriptClient"
	ArtifactPythonClient     ArtifactKind = "pythonClient"
	ArtifactSASClient        ArtifactKind = "sasClient"
	ArtifactJDBCClient       ArtifactKind = "jdbcClient"
	ArtifactExtraModules     ArtifactKind = "extraModules"
)

// Artifact is a classified file in the local cache.
type Artifact struct {
	Kind      ArtifactKind
	Label     string // human readable description
	FileName  string
	LocalPath string
	Size      int64 // bytes
	Link      string
}

const bytesPerMB = 1024 * 1024.0

// SizeMB renders the size in megabytes with one decimal place, e.g. "12.3 MB".
func (x Artifact) SizeMB() string {
	return fmt.Sprintf("%0.1f MB", float64(x.Size)/bytesPerMB)
}

// ArtifactSet is an ordered collection of classified artifacts.
type ArtifactSet []Artifact

// Get returns the artifact of kind, or nil.
func (x ArtifactSet) Get(kind ArtifactKind) *Artifact {
	for i := range x {
		if x[i].Kind == kind {
			return &x[i]
		}
	}
	return nil
}
