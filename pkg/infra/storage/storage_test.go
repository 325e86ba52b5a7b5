package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/labkey/pushdist/pkg/infra/storage"
)

type fakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]bool
	objects  map[string]bool
	uploads  map[string]http.Header
	requests []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		if f.buckets[r.URL.Path] || f.objects[r.URL.Path] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		if strings.Count(r.URL.Path, "/") == 1 {
			f.buckets[r.URL.Path] = true
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[r.URL.Path] = true
		f.uploads[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	fake := &fakeS3{
		buckets: map[string]bool{},
		objects: map[string]bool{"/downloads-bucket/downloads/acme/d/trunk/a.zip": true},
		uploads: map[string]http.Header{},
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func TestS3_Exists(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeS3(t)

	s, err := storage.NewS3(ctx, "downloads-bucket", "us-east-1",
		storage.WithEndpoint(srv.URL),
		storage.WithStaticCredentials("AKIAEXAMPLE", "secret"),
	)
	gt.NoError(t, err)

	ok, err := s.Exists(ctx, "downloads/acme/d/trunk/a.zip")
	gt.NoError(t, err)
	gt.True(t, ok)

	ok, err = s.Exists(ctx, "downloads/acme/d/trunk/b.zip")
	gt.NoError(t, err)
	gt.Equal(t, ok, false)
}

func TestS3_EnsureBucket(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)

	s, err := storage.NewS3(ctx, "downloads-bucket", "us-east-1",
		storage.WithEndpoint(srv.URL),
		storage.WithStaticCredentials("AKIAEXAMPLE", "secret"),
	)
	gt.NoError(t, err)

	gt.NoError(t, s.EnsureBucket(ctx))
	gt.True(t, fake.buckets["/downloads-bucket"])

	// second call finds the bucket and does not create it again
	gt.NoError(t, s.EnsureBucket(ctx))
	gt.Equal(t, fake.requests[len(fake.requests)-1], "HEAD /downloads-bucket")
}

func TestS3_Upload(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)

	s, err := storage.NewS3(ctx, "downloads-bucket", "us-east-1",
		storage.WithEndpoint(srv.URL),
		storage.WithStaticCredentials("AKIAEXAMPLE", "secret"),
	)
	gt.NoError(t, err)

	local := filepath.Join(t.TempDir(), "LabKey20.3-1234-bin.tar.gz")
	gt.NoError(t, os.WriteFile(local, []byte("distribution"), 0644))

	key := "downloads/acme/d/monthly//LabKey20.3-1234-bin.tar.gz"
	gt.NoError(t, s.Upload(ctx, key, local))

	hdr, ok := fake.uploads["/downloads-bucket/"+key]
	gt.True(t, ok)
	gt.Equal(t, hdr.Get("X-Amz-Acl"), "public-read")
	gt.Equal(t, hdr.Get("X-Amz-Storage-Class"), "REDUCED_REDUNDANCY")

	exists, err := s.Exists(ctx, key)
	gt.NoError(t, err)
	gt.True(t, exists)

	gt.Error(t, s.Upload(ctx, key, filepath.Join(t.TempDir(), "absent.zip")))
}

func TestS3_URL(t *testing.T) {
	s, err := storage.NewS3(context.Background(), "labkey-downloads", "us-east-1",
		storage.WithStaticCredentials("AKIAEXAMPLE", "secret"),
	)
	gt.NoError(t, err)
	gt.Equal(t, s.URL("downloads/acme/r/20.3/a.zip"), "http://labkey-downloads.s3.amazonaws.com/downloads/acme/r/20.3/a.zip")
}

func TestPublicURL(t *testing.T) {
	gt.Equal(t, storage.PublicURL("labkey-downloads", "downloads/acme/d/trunk/a.zip"),
		"http://labkey-downloads.s3.amazonaws.com/downloads/acme/d/trunk/a.zip")
	gt.Equal(t, storage.PublicURL("gs://labkey-downloads", "downloads/acme/d/trunk/a.zip"),
		"https://storage.googleapis.com/labkey-downloads/downloads/acme/d/trunk/a.zip")
}

func TestIsGCS(t *testing.T) {
	gt.True(t, storage.IsGCS("gs://labkey-downloads"))
	gt.Equal(t, storage.IsGCS("labkey-downloads"), false)
}
