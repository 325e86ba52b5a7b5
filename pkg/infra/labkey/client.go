package labkey

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/infra/httpclient"
)

const csrfHeader = "X-LABKEY-CSRF"

type client struct {
	baseURL    string // scheme://host[/context]
	login      string
	password   string
	httpClient *http.Client
	csrf       string
}

// Option is a functional option for the LabKey client
type Option func(*client)

// WithBasicAuth authenticates requests; without it requests are anonymous
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

// NewClient creates a client for the server at serverURL (scheme and host)
// deployed under contextPath ("" or "/labkey")
func NewClient(serverURL, contextPath string, opts ...Option) interfaces.LabKeyClient {
	hc := httpclient.New()
	if jar, err := cookiejar.New(nil); err == nil {
		hc.Jar = jar
	}

	c := &client{
		baseURL:    strings.TrimRight(serverURL, "/") + contextPath,
		httpClient: hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// buildURL renders /<controller>/<container>/<action> with escaped container segments
func (c *client) buildURL(controller, container, action string, query url.Values) string {
	var segments []string
	for _, s := range strings.Split(strings.Trim(container, "/"), "/") {
		if s != "" {
			segments = append(segments, url.PathEscape(s))
		}
	}

	u := c.baseURL + "/" + controller + "/"
	if len(segments) > 0 {
		u += strings.Join(segments, "/") + "/"
	}
	u += action
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *client) do(ctx context.Context, method, u string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", u))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.login != "" {
		req.SetBasicAuth(c.login, c.password)
	}
	if method != http.MethodGet && c.csrf != "" {
		req.Header.Set(csrfHeader, c.csrf)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to LabKey server", goerr.V("url", u))
	}
	return resp, nil
}

// ensureCSRF fetches the session CSRF token once before the first write.
// Servers that do not issue one are used without it.
func (c *client) ensureCSRF(ctx context.Context) {
	if c.csrf != "" {
		return
	}

	resp, err := c.do(ctx, http.MethodGet, c.buildURL("login", "", "whoAmI.api", nil), nil, "")
	if err != nil {
		ctxlog.From(ctx).Debug("CSRF token is not available", "error", err)
		return
	}
	defer resp.Body.Close()

	var who struct {
		CSRF string `json:"CSRF"`
	}
	if resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&who) == nil {
		c.csrf = who.CSRF
	}
}

// SelectRows returns every row of schema.query in container
func (c *client) SelectRows(ctx context.Context, container, schema, query string) ([]interfaces.Row, error) {
	u := c.buildURL("query", container, "selectRows.api", url.Values{
		"schemaName":      {schema},
		"query.queryName": {query},
	})

	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("failed to select rows",
			goerr.V("url", u),
			goerr.V("status", resp.StatusCode),
		)
	}

	var result struct {
		Rows []interfaces.Row `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode selectRows response", goerr.V("url", u))
	}
	return result.Rows, nil
}

// Exists probes a browser URL. Only a 404 response reports absence.
func (c *client) Exists(ctx context.Context, u string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 400 {
		ctxlog.From(ctx).Warn("Unexpected status while probing URL", "url", u, "status", resp.StatusCode)
	}
	return true, nil
}

// UpdateWiki loads the current properties of the wiki page, replaces its
// body and saves it. The HTTP status of the save request is returned.
func (c *client) UpdateWiki(ctx context.Context, container, name, body string) (int, error) {
	u := c.buildURL("wiki", container, "editWiki.view", url.Values{"name": {name}})
	resp, err := c.do(ctx, http.MethodGet, u, nil, "")
	if err != nil {
		return 0, err
	}
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read wiki edit page", goerr.V("url", u))
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, goerr.New("failed to load wiki edit page",
			goerr.V("url", u),
			goerr.V("status", resp.StatusCode),
		)
	}

	props, err := ExtractWikiProps(page)
	if err != nil {
		return 0, goerr.Wrap(err, "wiki page properties not found", goerr.V("url", u), goerr.V("wiki", name))
	}
	props["body"] = body
	props["rendererType"] = "HTML"

	payload, err := json.Marshal(props)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to encode wiki properties")
	}

	c.ensureCSRF(ctx)
	saveURL := c.buildURL("wiki", container, "saveWiki.api", nil)
	resp, err = c.do(ctx, http.MethodPost, saveURL, bytes.NewReader(payload), "application/json")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

var wikiPropsMarkers = [][]byte{
	[]byte("LABKEY._wiki.setWikiProps("),
	[]byte("_wikiProps"),
}

// ExtractWikiProps reads the wiki properties object literal embedded in the
// wiki edit page. The literal holds one property per line with unquoted keys
// and quoted values; every value is returned as a string.
func ExtractWikiProps(page []byte) (map[string]any, error) {
	idx := -1
	for _, marker := range wikiPropsMarkers {
		if idx = bytes.Index(page, marker); idx >= 0 {
			break
		}
	}
	if idx < 0 {
		return nil, goerr.New("wiki properties marker missing")
	}
	start := bytes.IndexByte(page[idx:], '{')
	if start < 0 {
		return nil, goerr.New("wiki properties object missing")
	}

	props := make(map[string]any)
	for _, line := range strings.Split(string(page[idx+start+1:]), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "}") {
			return props, nil
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = trimLiteral(key)
		if key == "" {
			continue
		}
		props[key] = trimLiteral(value)
	}
	return nil, goerr.New("wiki properties object not terminated")
}

func trimLiteral(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	s = strings.TrimSpace(s)
	return strings.Trim(s, `'"`)
}

// PostMessage posts an HTML message to the message board of container
func (c *client) PostMessage(ctx context.Context, container, title, body string) (bool, error) {
	c.ensureCSRF(ctx)

	form := url.Values{
		"title":        {title},
		"body":         {body},
		"rendererType": {"HTML"},
	}
	u := c.buildURL("announcements", container, "insert.api", nil)
	resp, err := c.do(ctx, http.MethodPost, u, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ctxlog.From(ctx).Warn("Message board rejected the post", "url", u, "status", resp.StatusCode)
		return false, nil
	}

	var result struct {
		Success *bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Success != nil {
		return *result.Success, nil
	}
	return true, nil
}
