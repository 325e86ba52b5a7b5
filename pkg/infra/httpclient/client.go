package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/m-mizutani/ctxlog"
)

// New returns a pooled HTTP client that logs every round trip at debug level.
// Requests are never retried.
func New() *http.Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Transport = &loggingTransport{next: hc.Transport}
	return hc
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := ctxlog.From(r.Context())

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		logger.Debug("HTTP request failed",
			"method", r.Method,
			"url", r.URL.Redacted(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	logger.Debug("HTTP request",
		"method", r.Method,
		"url", r.URL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
