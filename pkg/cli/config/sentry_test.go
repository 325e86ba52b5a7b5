package config_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/gt"

	"github.com/labkey/pushdist/pkg/cli/config"
)

func TestSentry_Report(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/42/") {
			received.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Sentry{
		DSN: "http://publickey@" + strings.TrimPrefix(srv.URL, "http://") + "/42",
		Env: "test",
	}
	gt.NoError(t, cfg.Configure())
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })

	cfg.Report(errors.New("upload failed"))
	gt.True(t, received.Load() >= 1)
}

func TestSentry_Disabled(t *testing.T) {
	var cfg config.Sentry
	gt.NoError(t, cfg.Configure())
	cfg.Report(errors.New("ignored"))
}

func TestSentry_InvalidDSN(t *testing.T) {
	cfg := config.Sentry{DSN: "not a dsn"}
	gt.Error(t, cfg.Configure())
}
