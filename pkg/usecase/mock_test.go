package usecase_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/model"
)

type mockTeamCity struct {
	manifest  *model.ArtifactManifest
	buildInfo *model.BuildInfo
	downloads []string
	// artifacts size in bytes, keyed by relative path
	sizes map[string]int
}

func (m *mockTeamCity) GetManifest(ctx context.Context, buildType, buildID string) (*model.ArtifactManifest, error) {
	return m.manifest, nil
}

func (m *mockTeamCity) GetBuildInfo(ctx context.Context, buildType string) (*model.BuildInfo, error) {
	return m.buildInfo, nil
}

func (m *mockTeamCity) Download(ctx context.Context, buildType, buildID, relPath, destDir string) (string, error) {
	m.downloads = append(m.downloads, relPath)
	path := filepath.Join(destDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	size := 1024
	if s, ok := m.sizes[relPath]; ok {
		size = s
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type wikiUpdate struct {
	container string
	name      string
	body      string
}

type message struct {
	container string
	title     string
	body      string
}

type mockLabKey struct {
	lists      map[string][]interfaces.Row
	ExistsFunc func(url string) bool
	wikiStatus int
	postResult bool

	probes   []string
	wikis    []wikiUpdate
	messages []message
}

func (m *mockLabKey) SelectRows(ctx context.Context, container, schema, query string) ([]interfaces.Row, error) {
	rows, ok := m.lists[query]
	if !ok {
		return nil, fmt.Errorf("unknown query %s", query)
	}
	return rows, nil
}

func (m *mockLabKey) Exists(ctx context.Context, url string) (bool, error) {
	m.probes = append(m.probes, url)
	if m.ExistsFunc != nil {
		return m.ExistsFunc(url), nil
	}
	return true, nil
}

func (m *mockLabKey) UpdateWiki(ctx context.Context, container, name, body string) (int, error) {
	m.wikis = append(m.wikis, wikiUpdate{container: container, name: name, body: body})
	return m.wikiStatus, nil
}

func (m *mockLabKey) PostMessage(ctx context.Context, container, title, body string) (bool, error) {
	m.messages = append(m.messages, message{container: container, title: title, body: body})
	return m.postResult, nil
}

type mockStorage struct {
	existing    map[string]bool
	uploads     []string
	ensureCalls int
}

func (m *mockStorage) EnsureBucket(ctx context.Context) error {
	m.ensureCalls++
	return nil
}

func (m *mockStorage) Exists(ctx context.Context, key string) (bool, error) {
	return m.existing[key], nil
}

func (m *mockStorage) Upload(ctx context.Context, key, localPath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	m.uploads = append(m.uploads, key)
	return nil
}

func (m *mockStorage) URL(key string) string {
	return "https://downloads.example.org/" + key
}

type mockConsole struct {
	out         strings.Builder
	ConfirmFunc func(prompt string) error
	confirms    int
}

func (m *mockConsole) Printf(format string, args ...any) {
	fmt.Fprintf(&m.out, format, args...)
}

func (m *mockConsole) Confirm(prompt string) error {
	m.confirms++
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(prompt)
	}
	return nil
}

type mockNotifier struct {
	texts []string
}

func (m *mockNotifier) Notify(ctx context.Context, text string) error {
	m.texts = append(m.texts, text)
	return nil
}
