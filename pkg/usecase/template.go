package usecase

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// templateKind names a page template; the file is <kind>.html.
type templateKind string

const (
	templateReleaseWiki templateKind = "releaseWikiContent"
	templateDevWiki     templateKind = "devWikiContent"
	templateMessage     templateKind = "message"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// ErrTemplateKey is returned when a template references an unknown variable.
var ErrTemplateKey = goerr.New("template references an unknown key")

// templateStore resolves page templates: a customer override in dir, the
// shared template in dir, then the built-in default.
type templateStore struct {
	dir string
}

func (x *templateStore) load(customerKey string, kind templateKind) (string, string, error) {
	if x.dir != "" {
		candidates := []string{
			filepath.Join(x.dir, customerKey+"-"+string(kind)+".html"),
			filepath.Join(x.dir, string(kind)+".html"),
		}
		for _, path := range candidates {
			raw, err := os.ReadFile(path)
			if err == nil {
				return string(raw), path, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", "", goerr.Wrap(err, "failed to read template", goerr.V("path", path))
			}
		}
	}

	path := "templates/" + string(kind) + ".html"
	raw, err := defaultTemplates.ReadFile(path)
	if err != nil {
		return "", "", goerr.Wrap(err, "no template available", goerr.V("kind", kind))
	}
	return string(raw), "builtin:" + path, nil
}

// render loads and expands the template of kind for the customer.
func (x *templateStore) render(customerKey string, kind templateKind, vars map[string]string) (string, error) {
	tmpl, path, err := x.load(customerKey, kind)
	if err != nil {
		return "", err
	}
	out, err := expandTemplate(tmpl, vars)
	if err != nil {
		return "", goerr.Wrap(err, "failed to render template", goerr.V("path", path))
	}
	return out, nil
}

// expandTemplate substitutes %(key)s placeholders and collapses %% to %.
// Any other use of % is an error.
func expandTemplate(tmpl string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(tmpl) {
			return "", goerr.New("incomplete format at end of template", goerr.V("offset", i))
		}

		switch tmpl[i+1] {
		case '%':
			b.WriteByte('%')
			i++

		case '(':
			end := strings.IndexByte(tmpl[i+2:], ')')
			if end < 0 {
				return "", goerr.New("unterminated placeholder", goerr.V("offset", i))
			}
			key := tmpl[i+2 : i+2+end]
			next := i + 2 + end + 1
			if next >= len(tmpl) || tmpl[next] != 's' {
				return "", goerr.New("placeholder must use the s conversion", goerr.V("key", key))
			}
			v, ok := vars[key]
			if !ok {
				return "", goerr.Wrap(ErrTemplateKey, "template key is not defined", goerr.V("key", key))
			}
			b.WriteString(v)
			i = next

		default:
			return "", goerr.New("unsupported format character", goerr.V("char", string(tmpl[i+1])), goerr.V("offset", i))
		}
	}

	return b.String(), nil
}
