package model

import "strings"

// ArtifactEntry is one artifact element of the CI artifact manifest.
type ArtifactEntry struct {
	Name string // CI-relative path without extension
	Ext  string
}

// Path is the CI-relative file path of the artifact.
func (x ArtifactEntry) Path() string {
	return x.Name + "." + x.Ext
}

// Prefix is the artifact name up to (not including) its first '/'.
func (x ArtifactEntry) Prefix() string {
	if i := strings.Index(x.Name, "/"); i >= 0 {
		return x.Name[:i]
	}
	return x.Name
}

// ArtifactManifest is the ordered artifact listing of one CI build.
type ArtifactManifest struct {
	Entries []ArtifactEntry
}

// ContainingName returns entries whose name contains sub, in manifest order.
func (x *ArtifactManifest) ContainingName(sub string) []ArtifactEntry {
	var out []ArtifactEntry
	for _, e := range x.Entries {
		if strings.Contains(e.Name, sub) {
			out = append(out, e)
		}
	}
	return out
}

// ForBuildTarget returns entries whose first path segment equals buildTarget
// exactly: "acme-extra/foo" belongs to "acme-extra", never to "acme".
func (x *ArtifactManifest) ForBuildTarget(buildTarget string) []ArtifactEntry {
	target := strings.TrimSpace(buildTarget)
	var out []ArtifactEntry
	for _, e := range x.Entries {
		if e.Prefix() == target {
			out = append(out, e)
		}
	}
	return out
}
