package usecase

import (
	"strings"

	"github.com/labkey/pushdist/pkg/domain/model"
)

const (
	rowClass          = "labkey-row"
	alternateRowClass = "labkey-alternate-row"
	cellOpen          = `        <td style="white-space: nowrap;">`
)

// renderTableRows renders one wiki table row per artifact. Row classes
// alternate starting from labkey-row.
func renderTableRows(set model.ArtifactSet) string {
	var b strings.Builder
	for i, a := range set {
		class := rowClass
		if i%2 == 1 {
			class = alternateRowClass
		}
		b.WriteString(`    <tr class="` + class + `">` + "\n")
		b.WriteString(cellOpen + a.Label + "</td>\n")
		b.WriteString(cellOpen + `<a href="` + a.Link + `">` + a.FileName + "</a></td>\n")
		b.WriteString(cellOpen + a.SizeMB() + "</td>\n")
		b.WriteString("        </tr>\n")
	}
	return b.String()
}

// messagePriority is the order of related downloads in the message list.
var messagePriority = []model.ArtifactKind{
	model.ArtifactJavaClientSrc,
	model.ArtifactJavaClient,
	model.ArtifactJavaScriptClient,
	model.ArtifactPythonClient,
	model.ArtifactSASClient,
	model.ArtifactJDBCClient,
}

func listItem(label string, links ...*model.Artifact) string {
	anchors := make([]string, 0, len(links))
	for _, a := range links {
		anchors = append(anchors, `<a href="`+a.Link+`">`+a.FileName+`</a>`)
	}
	return "<li> " + label + ": (" + strings.Join(anchors, " | ") + ")</li>\n"
}

// renderMessageList renders the message board bullet list. Both binaries
// share one line, related downloads follow in priority order and anything
// left over is appended last.
func renderMessageList(binaries, related model.ArtifactSet) string {
	var b strings.Builder

	var bins []*model.Artifact
	if a := binaries.Get(model.ArtifactWindowsBinary); a != nil {
		bins = append(bins, a)
	}
	if a := binaries.Get(model.ArtifactUnixBinary); a != nil {
		bins = append(bins, a)
	}
	if len(bins) > 0 {
		b.WriteString(listItem("Binaries for Manual Install", bins...))
	}

	done := make(map[model.ArtifactKind]bool)
	for _, kind := range messagePriority {
		if a := related.Get(kind); a != nil {
			b.WriteString(listItem(a.Label, a))
			done[kind] = true
		}
	}
	for i := range related {
		if !done[related[i].Kind] {
			b.WriteString(listItem(related[i].Label, &related[i]))
		}
	}

	return b.String()
}
