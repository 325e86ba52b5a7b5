package model

import (
	"net/url"
	"strings"
)

// Environment is the resolved configuration of one config file section.
type Environment struct {
	Name           string
	ServerHost     string // LabKey server host[:port]
	ContextPath    string
	BuildInfoRoot  string
	OpsDirPath     string
	IssuesListPath string
	CacheDir       string
	TemplateDir    string
	UseSSL         bool
	Bucket         string
	BucketRegion   string
	CredentialFile string // storage credential file
	TeamCityURL    string
}

// ServerURL is the LabKey base URL without context path.
func (x *Environment) ServerURL() string {
	if x.UseSSL {
		return "https://" + x.ServerHost
	}
	return "http://" + x.ServerHost
}

// TeamCityHost is the host[:port] of TeamCityURL.
func (x *Environment) TeamCityHost() string {
	u, err := url.Parse(x.TeamCityURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SlashContextPath is the context path with a leading slash, or "".
func (x *Environment) SlashContextPath() string {
	if x.ContextPath == "" {
		return ""
	}
	return "/" + x.ContextPath
}

// OpsContainer is the container path holding the Customers, distributions and Releases lists.
func (x *Environment) OpsContainer() string {
	return x.BuildInfoRoot + x.OpsDirPath
}

// CustomerContainer is the container path of a customer's download folder.
func (x *Environment) CustomerContainer(project, folder string) string {
	return x.BuildInfoRoot + project + "/" + folder
}

// ProjectURL is the browser URL of a project path, e.g.
// https://host/ctx/project/<root><project>[/<folder>]. A '/' inside a
// segment is kept as a path separator so nested folders resolve.
func (x *Environment) ProjectURL(segments ...string) string {
	var escaped []string
	for _, s := range segments {
		for _, part := range strings.Split(s, "/") {
			escaped = append(escaped, url.PathEscape(part))
		}
	}
	return x.ServerURL() + x.SlashContextPath() + "/project/" + x.BuildInfoRoot + strings.Join(escaped, "/")
}
