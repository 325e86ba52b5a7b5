package model

// WikiHeading carries the wiki title strings. Release publishing has none.
type WikiHeading struct {
	Title           string
	ReleaseOrBuild  string // "release" or "build"
	ReleaseOrBuild2 string // capitalised form
}

// PublishContext holds everything rendered into one customer's wiki and
// message templates. It is built once per customer and discarded after use.
type PublishContext struct {
	Version          string
	SlashContextPath string
	Project          string
	BuildInfoRoot    string
	Folder           string
	BuildType        string
	SvnRev           string
	WhatsNew         string
	ReleaseNotes     string
	BuildDate        string
	BuildMessage     string

	MessageTitle string
	MessageDesc  string
	Wiki         *WikiHeading

	Binaries ArtifactSet
	Related  ArtifactSet

	WikiBinaryTableRows  string
	WikiRelatedTableRows string
	MessageListItems     string
}

// Vars flattens the context into template variables. Optional values that
// are absent produce no key, so a template referencing them fails to render.
func (x *PublishContext) Vars() map[string]string {
	vars := map[string]string{
		"version":              x.Version,
		"slashContextPath":     x.SlashContextPath,
		"project":              x.Project,
		"buildInfoRoot":        x.BuildInfoRoot,
		"folder":               x.Folder,
		"buildType":            x.BuildType,
		"svnRev":               x.SvnRev,
		"whatsNew":             x.WhatsNew,
		"releaseNotes":         x.ReleaseNotes,
		"buildDate":            x.BuildDate,
		"buildMessage":         x.BuildMessage,
		"messageTitle":         x.MessageTitle,
		"messageDesc":          x.MessageDesc,
		"wikiBinaryTableRows":  x.WikiBinaryTableRows,
		"wikiRelatedTableRows": x.WikiRelatedTableRows,
		"messageListItems":     x.MessageListItems,
	}

	if x.Wiki != nil {
		vars["wikiTitle"] = x.Wiki.Title
		vars["releaseOrBuild"] = x.Wiki.ReleaseOrBuild
		vars["releaseOrBuild2"] = x.Wiki.ReleaseOrBuild2
	}

	for _, set := range []ArtifactSet{x.Binaries, x.Related} {
		for _, a := range set {
			key := string(a.Kind)
			vars[key] = a.FileName
			vars[key+"Size"] = a.SizeMB()
			vars[key+"Link"] = a.Link
		}
	}

	return vars
}
