package storage

import (
	"context"
	"os"
	"strings"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
)

const gcsScheme = "gs://"

// New selects the backend from the bucket name: "gs://name" is Google Cloud
// Storage, anything else an S3 bucket.
func New(ctx context.Context, bucket, region string, opts ...S3Option) (interfaces.ObjectStorage, error) {
	if name, ok := strings.CutPrefix(bucket, gcsScheme); ok {
		return NewGCS(ctx, name, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	}
	return NewS3(ctx, bucket, region, opts...)
}

// IsGCS reports whether bucket names a Google Cloud Storage bucket.
func IsGCS(bucket string) bool {
	return strings.HasPrefix(bucket, gcsScheme)
}

// PublicURL returns the download URL of key in bucket without creating a
// client, for safe-mode previews.
func PublicURL(bucket, key string) string {
	if name, ok := strings.CutPrefix(bucket, gcsScheme); ok {
		return "https://storage.googleapis.com/" + name + "/" + key
	}
	return "http://" + bucket + ".s3.amazonaws.com/" + key
}
