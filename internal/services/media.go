package services

import (
	"context"
	"fmt"
	"time"

	appconfig "daily-moments-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignTTL = 5 * time.Minute

// BlobStore is the object storage surface for moment images, avatars,
// and voice reaction audio
type BlobStore interface {
	PresignUpload(ctx context.Context, path, contentType string) (string, error)
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
}

// S3Storage implements BlobStore on an S3-compatible bucket
type S3Storage struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Storage creates a new S3 blob store. A custom endpoint switches
// the client to path-style addressing for S3-compatible providers.
func NewS3Storage(ctx context.Context, cfg appconfig.AWSConfig) (*S3Storage, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:   client,
		bucket:   cfg.S3Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// BlobPath builds a storage path namespaced by the owning user id, so
// server-side access rules can key on the first path segment.
func BlobPath(ownerID, kind, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", ownerID, kind, uuid.New().String(), ext)
}

// PresignUpload returns a pre-signed PUT URL for path
func (s *S3Storage) PresignUpload(ctx context.Context, path, contentType string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}
	return request.URL, nil
}

// PublicURL returns the public URL for a stored blob
func (s *S3Storage) PublicURL(path string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, path)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, path)
}

// Delete removes a blob
func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
