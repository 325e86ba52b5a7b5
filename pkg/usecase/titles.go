package usecase

import (
	"strings"

	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

const releaseNotesURL = "https://www.labkey.org/Documentation/wiki-page.view?name=releaseNotes"

// headings fills the wiki heading and the message title/description for the update type.
func headings(pc *model.PublishContext, updateType types.UpdateType) {
	v := pc.Version
	project := pc.Project

	switch updateType {
	case types.UpdateTypeRelease:
		pc.MessageTitle = "(" + project + ") An official release of LabKey Server " + v + " is now available"
		pc.MessageDesc = ""

	case types.UpdateTypeSnapshot:
		pc.Wiki = &model.WikiHeading{
			Title:           "Latest Snapshot build of LabKey Server " + v,
			ReleaseOrBuild:  "build",
			ReleaseOrBuild2: "Build",
		}
		pc.MessageTitle = "(" + project + ") Snapshot build of LabKey Server " + v + " is now available."
		pc.MessageDesc = "The latest snapshot build of LabKey Server " + v + " has been created."

	case types.UpdateTypeMonthly:
		pc.Wiki = &model.WikiHeading{
			Title:           "LabKey Server " + v + " Monthly Release is now available.",
			ReleaseOrBuild:  "release",
			ReleaseOrBuild2: "Release",
		}
		pc.MessageTitle = "(" + project + ") The LabKey Server " + v + " Monthly Release is now available"
		pc.MessageDesc = "The LabKey Server " + v + " Monthly Release build is now available. See the <a href='" +
			releaseNotesURL + strings.ReplaceAll(v, ".", "") + "'>release notes</a> for a list of completed features."

	case types.UpdateTypeTrunk:
		pc.Wiki = &model.WikiHeading{
			Title:           "Latest Nightly Development Build of LabKey Server " + v,
			ReleaseOrBuild:  "build",
			ReleaseOrBuild2: "Build",
		}
		pc.MessageTitle = "(" + project + ") The latest development build for LabKey Server " + v + " is now available"
		pc.MessageDesc = "A new nightly development build for LabKey Server " + v + " has been created."
	}
}
