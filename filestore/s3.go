package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config locates the bucket. Static credentials are optional; without them the default
// AWS credential chain is used.
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// Uploader is the part of manager.Uploader used by S3.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 stores files as objects in a bucket.
type S3 struct {
	uploader Uploader
	bucket   string
	prefix   string
	now      func() time.Time
}

// NewS3 returns an S3 store for cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket must not be empty")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	slog.Debug("S3 file store enabled", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return NewS3WithUploader(manager.NewUploader(s3.NewFromConfig(awsCfg)), cfg.Bucket, cfg.Prefix), nil
}

// NewS3WithUploader returns an S3 store that uploads through u.
func NewS3WithUploader(u Uploader, bucket, prefix string) *S3 {
	return &S3{uploader: u, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := Key(s.now(), name)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file, %w", err)
	}
	slog.InfoContext(ctx, "file stored", "driver", DriverS3, "bucket", s.bucket, "key", s.prefix+key)
	return key, nil
}
