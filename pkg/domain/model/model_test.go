package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

func TestNewKeyPrefix(t *testing.T) {
	tests := []struct {
		name       string
		updateType types.UpdateType
		versionNum string
		want       string
	}{
		{name: "monthly", updateType: types.UpdateTypeMonthly, versionNum: "20.3", want: "downloads/acme/d/monthly/"},
		{name: "snapshot", updateType: types.UpdateTypeSnapshot, versionNum: "20.3", want: "downloads/acme/d/snapshot"},
		{name: "trunk", updateType: types.UpdateTypeTrunk, versionNum: "20.3", want: "downloads/acme/d/trunk"},
		{name: "release", updateType: types.UpdateTypeRelease, versionNum: "20.3", want: "downloads/acme/r/20.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := model.NewKeyPrefix("acme", tt.updateType, tt.versionNum)
			gt.Equal(t, prefix.String(), tt.want)
			gt.Equal(t, prefix.Key("a.zip"), tt.want+"/a.zip")
		})
	}
}

func TestArtifactManifest_ForBuildTarget(t *testing.T) {
	manifest := &model.ArtifactManifest{Entries: []model.ArtifactEntry{
		{Name: "acme/LabKey20.3-65432.7-acme-bin", Ext: "tar.gz"},
		{Name: "acme-extra/foo", Ext: "zip"},
		{Name: "client-api/java/LabKey20.3-65432.7-ClientAPI-Java", Ext: "zip"},
		{Name: "acme", Ext: "txt"},
	}}

	t.Run("exact first segment", func(t *testing.T) {
		got := manifest.ForBuildTarget("acme")
		gt.Equal(t, len(got), 2)
		gt.Equal(t, got[0].Path(), "acme/LabKey20.3-65432.7-acme-bin.tar.gz")
		gt.Equal(t, got[1].Path(), "acme.txt")
	})

	t.Run("longer target does not match shorter", func(t *testing.T) {
		got := manifest.ForBuildTarget("acme-extra")
		gt.Equal(t, len(got), 1)
		gt.Equal(t, got[0].Path(), "acme-extra/foo.zip")
	})

	t.Run("target is trimmed", func(t *testing.T) {
		gt.Equal(t, len(manifest.ForBuildTarget(" acme-extra ")), 1)
	})

	t.Run("substring match for shared artifacts", func(t *testing.T) {
		got := manifest.ContainingName("client-api")
		gt.Equal(t, len(got), 1)
	})
}

func TestIsProfessional(t *testing.T) {
	dists := model.Distributions{
		{Name: "acme_pro", BaseDistribution: "pro_plus"},
		{Name: "beta", BaseDistribution: "community"},
		{Name: "gamma", BaseDistribution: "community"},
		{Name: "gamma", BaseDistribution: "professional"},
	}

	tests := []struct {
		target string
		want   bool
	}{
		{target: "professional", want: true},
		{target: "biologics_pro", want: true},
		{target: "pro_plus", want: true},
		{target: "acme_pro", want: true},
		{target: "gamma", want: true},
		{target: "beta", want: false},
		{target: "community", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			gt.Equal(t, model.IsProfessional(tt.target, dists.BaseOf(tt.target)), tt.want)
		})
	}
}

func TestRevisionFromName(t *testing.T) {
	rev, ok := model.RevisionFromName("LabKey20.3-65432.7-ClientAPI-Java.zip")
	gt.True(t, ok)
	gt.Equal(t, rev, "65432")

	_, ok = model.RevisionFromName("nohyphen.zip")
	gt.Equal(t, ok, false)
}

func TestBuildLocator(t *testing.T) {
	gt.Equal(t, model.BuildLocator(""), ".lastSuccessful")
	gt.Equal(t, model.BuildLocator("12345"), "12345:id")
}

func TestBuildInfo_DisplayDate(t *testing.T) {
	info := model.BuildInfo{StartDate: time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC)}
	gt.Equal(t, info.DisplayDate(), "Tuesday Mar 03 2020")
}

func TestPublishContext_Vars(t *testing.T) {
	pc := &model.PublishContext{
		Version:      "20.3",
		MessageTitle: "title",
		Binaries: model.ArtifactSet{
			{Kind: model.ArtifactUnixBinary, FileName: "x-bin.tar.gz", Size: 3 * 1024 * 1024 / 2, Link: "http://b/x-bin.tar.gz"},
		},
	}

	vars := pc.Vars()
	gt.Equal(t, vars["version"], "20.3")
	gt.Equal(t, vars["unixBinary"], "x-bin.tar.gz")
	gt.Equal(t, vars["unixBinarySize"], "1.5 MB")
	gt.Equal(t, vars["unixBinaryLink"], "http://b/x-bin.tar.gz")

	_, hasWikiTitle := vars["wikiTitle"]
	gt.Equal(t, hasWikiTitle, false)

	pc.Wiki = &model.WikiHeading{Title: "w", ReleaseOrBuild: "build", ReleaseOrBuild2: "Build"}
	gt.Equal(t, pc.Vars()["releaseOrBuild2"], "Build")
}

func TestEnvironment_ProjectURL(t *testing.T) {
	env := &model.Environment{ServerHost: "www.example.org", UseSSL: true, ContextPath: "labkey", BuildInfoRoot: "home/"}
	gt.Equal(t, env.ProjectURL("Acme Corp", "Downloads"), "https://www.example.org/labkey/project/home/Acme%20Corp/Downloads")
	gt.Equal(t, env.CustomerContainer("Acme Corp", "Downloads"), "home/Acme Corp/Downloads")

	env.UseSSL = false
	env.ContextPath = ""
	gt.Equal(t, env.ProjectURL("acme"), "http://www.example.org/project/home/acme")
	gt.Equal(t, env.ProjectURL("acme", "Downloads/Nightly Builds"), "http://www.example.org/project/home/acme/Downloads/Nightly%20Builds")
}

func TestEnvironment_TeamCityHost(t *testing.T) {
	env := &model.Environment{TeamCityURL: "https://teamcity.labkey.org:8443/"}
	gt.Equal(t, env.TeamCityHost(), "teamcity.labkey.org:8443")
}
