package usecase

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/model"
)

// artifactRule recognises one download kind in the cache directory.
type artifactRule struct {
	kind         model.ArtifactKind
	label        string
	pattern      string // glob relative to the directory being classified
	professional bool   // only for professional tier customers
	generalOnly  bool   // only for the general download page
}

var binaryRules = []artifactRule{
	{kind: model.ArtifactWindowsBinary, label: "Binaries for Manual Installation (zip)", pattern: "*bin.zip"},
	{kind: model.ArtifactUnixBinary, label: "Binaries for Manual Installation (tar.gz)", pattern: "*bin.tar.gz"},
}

// relatedRules is also the display order of the related downloads table.
var relatedRules = []artifactRule{
	{kind: model.ArtifactJavaClientSrc, label: "Java Client API Library - Source Code (zip)", pattern: "client-api/java/*ClientAPI-Java-src.zip"},
	{kind: model.ArtifactJavaClient, label: "Java Client API Library with Docs (zip)", pattern: "client-api/java/*ClientAPI-Java.zip"},
	{kind: model.ArtifactJavaScriptClient, label: "JavaScript Client API Library Docs (zip)", pattern: "client-api/javascript/*ClientAPI-JavaScript-Docs.zip"},
	{kind: model.ArtifactPythonClient, label: "Python Client API Library (zip)", pattern: "client-api/Python/LabKey*.zip"},
	{kind: model.ArtifactSASClient, label: "SAS Client API Library (zip)", pattern: "client-api/sas/*ClientAPI-SAS.zip"},
	{kind: model.ArtifactJDBCClient, label: "JDBC Driver (jar)", pattern: "client-api/jdbc/labkey-api-jdbc*-all.jar", professional: true},
	// extra modules are no longer built; the label stays registered without a file
	{kind: model.ArtifactExtraModules, label: "Additional LabKey Modules", generalOnly: true},
}

// sharedUploadRules lists the shared client library files uploaded for every
// customer, in upload order.
var sharedUploadRules = []artifactRule{
	relatedRules[3], // Python
	relatedRules[2], // JavaScript
	relatedRules[1], // Java
	relatedRules[0], // Java source
	relatedRules[4], // SAS
	relatedRules[5], // JDBC
}

// classifyInput describes one customer for classification.
type classifyInput struct {
	cacheDir     string
	buildTarget  string
	customerKey  string
	professional bool
	prefix       model.KeyPrefix
	linkOf       func(key string) string
}

func (x *classifyInput) applies(rule artifactRule) bool {
	if rule.professional && !x.professional {
		return false
	}
	if rule.generalOnly && x.customerKey != model.GeneralCustomer {
		return false
	}
	return true
}

// match returns the first file matching the rule under dir, or nil.
func (x *classifyInput) match(dir string, rule artifactRule) (*model.Artifact, error) {
	pattern := filepath.Join(dir, filepath.FromSlash(rule.pattern))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid artifact pattern", goerr.V("pattern", pattern))
	}
	if len(files) == 0 {
		return nil, nil
	}

	path := files[0]
	st, err := os.Stat(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat artifact", goerr.V("path", path))
	}

	name := filepath.Base(path)
	return &model.Artifact{
		Kind:      rule.kind,
		Label:     rule.label,
		FileName:  name,
		LocalPath: path,
		Size:      st.Size(),
		Link:      x.linkOf(x.prefix.Key(name)),
	}, nil
}

func (x *classifyInput) fold(dir string, rules []artifactRule) (model.ArtifactSet, error) {
	var set model.ArtifactSet
	for _, rule := range rules {
		if !x.applies(rule) || rule.pattern == "" {
			continue
		}
		a, err := x.match(dir, rule)
		if err != nil {
			return nil, err
		}
		if a != nil {
			set = append(set, *a)
		}
	}
	return set, nil
}

// classify folds the rule tables over the cache directory, producing the
// binary set from <cache>/<buildTarget> and the related set from the shared
// downloads.
func classify(in *classifyInput) (binaries, related model.ArtifactSet, err error) {
	binaries, err = in.fold(filepath.Join(in.cacheDir, in.buildTarget), binaryRules)
	if err != nil {
		return nil, nil, err
	}
	related, err = in.fold(in.cacheDir, relatedRules)
	if err != nil {
		return nil, nil, err
	}
	return binaries, related, nil
}

// sharedUploads returns the local paths of the shared client library files
// to publish for the customer.
func sharedUploads(in *classifyInput) ([]string, error) {
	var paths []string
	for _, rule := range sharedUploadRules {
		if !in.applies(rule) {
			continue
		}
		a, err := in.match(in.cacheDir, rule)
		if err != nil {
			return nil, err
		}
		if a != nil {
			paths = append(paths, a.LocalPath)
		}
	}
	return paths, nil
}
