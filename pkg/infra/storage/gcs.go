package storage

import (
	"context"
	"errors"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
)

type gcsStorage struct {
	bucket    *storage.BucketHandle
	name      string
	projectID string
}

// NewGCS creates a Google Cloud Storage backend for bucket. projectID is only
// needed when the bucket has to be created.
func NewGCS(ctx context.Context, bucket, projectID string, opts ...option.ClientOption) (interfaces.ObjectStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}

	return &gcsStorage{
		bucket:    client.Bucket(bucket),
		name:      bucket,
		projectID: projectID,
	}, nil
}

// EnsureBucket checks the bucket and creates it when it does not exist
func (s *gcsStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return goerr.Wrap(err, "there was an error while connecting to GCS", goerr.V("bucket", s.name))
	}
	if s.projectID == "" {
		return goerr.New("bucket does not exist and no project is configured to create it", goerr.V("bucket", s.name))
	}

	ctxlog.From(ctx).Info("Bucket does not exist, creating it", "bucket", s.name)
	if err := s.bucket.Create(ctx, s.projectID, nil); err != nil {
		return goerr.Wrap(err, "there was an error while attempting to create the bucket", goerr.V("bucket", s.name))
	}
	return nil
}

// Exists reports whether key is already stored in the bucket
func (s *gcsStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to check object existence", goerr.V("bucket", s.name), goerr.V("key", key))
}

// Upload stores localPath at key with public read access
func (s *gcsStorage) Upload(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return goerr.Wrap(err, "failed to open file for upload", goerr.V("path", localPath))
	}
	defer f.Close()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.PredefinedACL = "publicRead"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload file", goerr.V("bucket", s.name), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize upload", goerr.V("bucket", s.name), goerr.V("key", key))
	}
	return nil
}

// URL returns the public download URL of key
func (s *gcsStorage) URL(key string) string {
	return "https://storage.googleapis.com/" + s.name + "/" + key
}
