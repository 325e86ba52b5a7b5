package interfaces

import "context"

// ObjectStorage defines the publish target for download files
type ObjectStorage interface {
	// EnsureBucket verifies the bucket exists, creating it when missing
	EnsureBucket(ctx context.Context) error

	// Exists reports whether key is already stored
	Exists(ctx context.Context, key string) (bool, error)

	// Upload stores the local file at key with public read access
	Upload(ctx context.Context, key, localPath string) error

	// URL returns the public download URL of key
	URL(key string) string
}
