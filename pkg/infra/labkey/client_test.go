package labkey_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/labkey/pushdist/pkg/infra/labkey"
)

func TestClient_SelectRows(t *testing.T) {
	var gotPath, gotSchema, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotSchema = r.URL.Query().Get("schemaName")
		gotQuery = r.URL.Query().Get("query.queryName")
		_, _ = w.Write([]byte(`{"rows":[{"name":"Acme","buildTarget":"acme","versionNum":20.3}]}`))
	}))
	defer srv.Close()

	c := labkey.NewClient(srv.URL, "/labkey")
	rows, err := c.SelectRows(context.Background(), "home/Ops Dir", "lists", "Customers")
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 1)
	gt.Equal(t, rows[0]["name"], any("Acme"))
	gt.Equal(t, gotPath, "/labkey/query/home/Ops%20Dir/selectRows.api")
	gt.Equal(t, gotSchema, "lists")
	gt.Equal(t, gotQuery, "Customers")
}

func TestClient_SelectRows_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := labkey.NewClient(srv.URL, "").SelectRows(context.Background(), "home", "lists", "Customers")
	gt.Error(t, err)
}

func TestClient_Exists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project/acme/begin.view":
			w.WriteHeader(http.StatusOK)
		case "/project/secret/begin.view":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := labkey.NewClient(srv.URL, "")

	ok, err := c.Exists(ctx, srv.URL+"/project/acme/begin.view?")
	gt.NoError(t, err)
	gt.True(t, ok)

	ok, err = c.Exists(ctx, srv.URL+"/project/beta-corp/begin.view?")
	gt.NoError(t, err)
	gt.Equal(t, ok, false)

	ok, err = c.Exists(ctx, srv.URL+"/project/secret/begin.view?")
	gt.NoError(t, err)
	gt.True(t, ok)
}

func TestClient_UpdateWiki(t *testing.T) {
	var saved map[string]any
	var csrf string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wiki/home/Acme/Downloads/editWiki.view":
			if r.URL.Query().Get("name") != "development" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`<html><script>
LABKEY._wiki.setWikiProps({
    entityId: 'abc',
    rowId: 7,
    name: 'development',
    title: 'Development',
    body: 'old'
});
</script></html>`))
		case "/login/whoAmI.api":
			_, _ = w.Write([]byte(`{"CSRF":"token-1"}`))
		case "/wiki/home/Acme/Downloads/saveWiki.api":
			csrf = r.Header.Get("X-LABKEY-CSRF")
			_ = json.NewDecoder(r.Body).Decode(&saved)
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := labkey.NewClient(srv.URL, "", labkey.WithBasicAuth("ops", "pw"))
	status, err := c.UpdateWiki(context.Background(), "home/Acme/Downloads", "development", "<p>new</p>")
	gt.NoError(t, err)
	gt.Equal(t, status, http.StatusOK)
	gt.Equal(t, saved["body"], any("<p>new</p>"))
	gt.Equal(t, saved["entityId"], any("abc"))
	gt.Equal(t, saved["rendererType"], any("HTML"))
	gt.Equal(t, csrf, "token-1")

	_, err = c.UpdateWiki(context.Background(), "home/Acme/Downloads", "release", "x")
	gt.Error(t, err)
}

func TestExtractWikiProps(t *testing.T) {
	t.Run("setWikiProps call", func(t *testing.T) {
		page := "<script>\nLABKEY._wiki.setWikiProps({\n    entityId: 'abc',\n    name: 'development',\n    webPartId: \"\",\n    pageVersionId: 12,\n    redirect: 'http://lk/project/home/begin.view?'\n});\n</script>"
		props, err := labkey.ExtractWikiProps([]byte(page))
		gt.NoError(t, err)
		gt.Equal(t, props["entityId"], any("abc"))
		gt.Equal(t, props["name"], any("development"))
		gt.Equal(t, props["webPartId"], any(""))
		gt.Equal(t, props["pageVersionId"], any("12"))
		gt.Equal(t, props["redirect"], any("http://lk/project/home/begin.view?"))
	})

	t.Run("legacy variable", func(t *testing.T) {
		page := "var _wikiProps = {\n  entityId: 'abc',\n  title: 'Release Notes'\n};"
		props, err := labkey.ExtractWikiProps([]byte(page))
		gt.NoError(t, err)
		gt.Equal(t, props["entityId"], any("abc"))
		gt.Equal(t, props["title"], any("Release Notes"))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := labkey.ExtractWikiProps([]byte("<html></html>"))
		gt.Error(t, err)
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := labkey.ExtractWikiProps([]byte("_wikiProps = {\n name: 'a',\n"))
		gt.Error(t, err)
	})
}

func TestClient_PostMessage(t *testing.T) {
	var title, body, renderer string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/announcements/home/Acme/Downloads/insert.api" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = r.ParseForm()
		title = r.PostForm.Get("title")
		body = r.PostForm.Get("body")
		renderer = r.PostForm.Get("rendererType")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := labkey.NewClient(srv.URL, "")
	ok, err := c.PostMessage(context.Background(), "home/Acme/Downloads", "Build available", "<ul></ul>")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, title, "Build available")
	gt.Equal(t, body, "<ul></ul>")
	gt.Equal(t, renderer, "HTML")

	status = http.StatusInternalServerError
	ok, err = c.PostMessage(context.Background(), "home/Acme/Downloads", "t", "b")
	gt.NoError(t, err)
	gt.Equal(t, ok, false)
}
