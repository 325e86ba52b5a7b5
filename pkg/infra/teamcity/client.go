package teamcity

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/infra/httpclient"
)

const manifestFile = "teamcity-ivy.xml"

type client struct {
	baseURL    string
	login      string
	password   string
	httpClient *http.Client
}

// Option is a functional option for the TeamCity client
type Option func(*client)

// WithBasicAuth authenticates requests; without it guest access is used
func WithBasicAuth(login, password string) Option {
	return func(c *client) {
		c.login = login
		c.password = password
	}
}

// WithHTTPClient replaces the default pooled HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// NewClient creates a TeamCity client for the server at baseURL
func NewClient(baseURL string, opts ...Option) interfaces.TeamCityClient {
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// authPrefix selects the authenticated or guest URL space
func (c *client) authPrefix() string {
	if c.login != "" {
		return "httpAuth"
	}
	return "guestAuth"
}

func (c *client) artifactURL(buildType, buildID, relPath string) string {
	return c.baseURL + "/" + c.authPrefix() + "/repository/download/" + buildType + "/" + buildID + "/" + relPath
}

func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	if c.login != "" {
		req.SetBasicAuth(c.login, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "there was a problem connecting to the TeamCity server", goerr.V("url", url))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, goerr.New("unexpected response from TeamCity",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}
	return resp, nil
}

// GetManifest fetches and parses the ivy artifact listing of a build
func (c *client) GetManifest(ctx context.Context, buildType, buildID string) (*model.ArtifactManifest, error) {
	url := c.artifactURL(buildType, buildID, manifestFile)
	ctxlog.From(ctx).Info("Download the TeamCity build artifacts list", "url", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download the list of artifacts")
	}
	defer resp.Body.Close()

	manifest, err := ParseManifest(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse artifact list", goerr.V("url", url))
	}
	return manifest, nil
}

// ParseManifest collects every artifact element, at any depth, in document order
func ParseManifest(r io.Reader) (*model.ArtifactManifest, error) {
	decoder := xml.NewDecoder(r)
	manifest := &model.ArtifactManifest{}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "invalid manifest XML")
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "artifact" {
			continue
		}

		var entry model.ArtifactEntry
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "name":
				entry.Name = attr.Value
			case "ext":
				entry.Ext = attr.Value
			}
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	return manifest, nil
}

type buildStatus struct {
	XMLName   xml.Name `xml:"build"`
	StartDate string   `xml:"startDate"`
}

// GetBuildInfo fetches the start date of the last successful build of buildType
func (c *client) GetBuildInfo(ctx context.Context, buildType string) (*model.BuildInfo, error) {
	url := c.baseURL + "/" + c.authPrefix() + "/app/rest/builds/buildType:" + buildType + ",status:Success"
	ctxlog.From(ctx).Info("Determine the date/time when this build was completed", "url", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download build status")
	}
	defer resp.Body.Close()

	return ParseBuildInfo(resp.Body)
}

// ParseBuildInfo reads the startDate field (yyyyMMddTHHmmss+zzzz) of a build status document
func ParseBuildInfo(r io.Reader) (*model.BuildInfo, error) {
	var status buildStatus
	if err := xml.NewDecoder(r).Decode(&status); err != nil {
		return nil, goerr.Wrap(err, "invalid build status XML")
	}
	if len(status.StartDate) < 8 {
		return nil, goerr.New("build status has no startDate", goerr.V("startDate", status.StartDate))
	}

	date, err := time.Parse("20060102", status.StartDate[:8])
	if err != nil {
		return nil, goerr.Wrap(err, "invalid startDate", goerr.V("startDate", status.StartDate))
	}
	return &model.BuildInfo{StartDate: date}, nil
}

// Download writes the artifact at relPath to destDir/relPath, creating
// intermediate directories. An existing file is overwritten.
func (c *client) Download(ctx context.Context, buildType, buildID, relPath, destDir string) (string, error) {
	logger := ctxlog.From(ctx)
	dest := filepath.Join(destDir, filepath.FromSlash(relPath))

	if dir := filepath.Dir(dest); dir != destDir {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", goerr.Wrap(err, "there was an error creating the directory", goerr.V("dir", dir))
		}
	}

	url := c.artifactURL(buildType, buildID, relPath)
	start := time.Now()
	logger.Info("Download artifact", "artifact", relPath, "url", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return "", goerr.Wrap(err, "there was a problem downloading the files from TeamCity")
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create local file", goerr.V("path", dest))
	}

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", goerr.Wrap(err, "failed to write local file", goerr.V("path", dest))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return "", goerr.Wrap(err, "failed to close local file", goerr.V("path", dest))
	}

	logger.Info("Download completed",
		"artifact", relPath,
		"size_bytes", n,
		"duration", time.Since(start).String(),
	)
	return dest, nil
}
