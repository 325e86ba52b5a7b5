package storage

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
)

type s3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
	endpoint string
}

// S3Option is a functional option for the S3 backend
type S3Option func(*s3Settings)

type s3Settings struct {
	endpoint  string
	accessKey string
	secretKey string
}

// WithEndpoint targets an S3 compatible endpoint using path-style addressing
func WithEndpoint(endpoint string) S3Option {
	return func(s *s3Settings) {
		s.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithStaticCredentials uses fixed keys instead of the default credential chain
func WithStaticCredentials(accessKey, secretKey string) S3Option {
	return func(s *s3Settings) {
		s.accessKey = accessKey
		s.secretKey = secretKey
	}
}

// NewS3 creates an S3 backend for bucket. Requests are never retried.
func NewS3(ctx context.Context, bucket, region string, opts ...S3Option) (interfaces.ObjectStorage, error) {
	var settings s3Settings
	for _, opt := range opts {
		opt(&settings)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if settings.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.accessKey, settings.secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.endpoint != "" {
			o.BaseEndpoint = aws.String(settings.endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		region:   region,
		endpoint: settings.endpoint,
	}, nil
}

// isNotFound matches both typed and generic 404 responses
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

// EnsureBucket checks the bucket and creates it when it does not exist
func (s *s3Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return goerr.Wrap(err, "there was an error while connecting to S3", goerr.V("bucket", s.bucket))
	}

	ctxlog.From(ctx).Info("Bucket does not exist, creating it", "bucket", s.bucket)
	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return goerr.Wrap(err, "there was an error while attempting to create the bucket", goerr.V("bucket", s.bucket))
	}
	return nil
}

// Exists reports whether key is already stored in the bucket
func (s *s3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to check object existence", goerr.V("bucket", s.bucket), goerr.V("key", key))
}

// Upload stores localPath at key, public-read with reduced redundancy storage.
// Large files are sent as multipart uploads.
func (s *s3Storage) Upload(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return goerr.Wrap(err, "failed to open file for upload", goerr.V("path", localPath))
	}
	defer f.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         f,
		ACL:          s3types.ObjectCannedACLPublicRead,
		StorageClass: s3types.StorageClassReducedRedundancy,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upload file", goerr.V("bucket", s.bucket), goerr.V("key", key))
	}
	return nil
}

// URL returns the public download URL of key
func (s *s3Storage) URL(key string) string {
	if s.endpoint != "" {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	return PublicURL(s.bucket, key)
}
