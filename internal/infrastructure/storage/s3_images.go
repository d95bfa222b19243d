// Package storage resolves product image references against Supabase Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	infraconfig "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultPresignExpiry = 15 * time.Minute

// S3ImageResolver presigns GET URLs for image keys stored in an S3-compatible bucket.
// Supabase Storage exposes such an endpoint at <project>/storage/v1/s3.
type S3ImageResolver struct {
	presignClient *s3.PresignClient
	bucket        string
	expiry        time.Duration
	logger        *zap.Logger
}

// S3ImageResolverOption is a functional option for configuring S3ImageResolver
type S3ImageResolverOption func(*S3ImageResolver)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ImageResolverOption {
	return func(r *S3ImageResolver) {
		r.logger = logger
	}
}

// NewS3ImageResolver creates a resolver from the storage configuration
func NewS3ImageResolver(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ImageResolverOption) (*S3ImageResolver, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage credentials are required")
	}
	if !isURL(cfg.Endpoint) {
		return nil, fmt.Errorf("invalid storage endpoint %q", cfg.Endpoint)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})

	r := &S3ImageResolver{
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		expiry:        cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.expiry <= 0 {
		r.expiry = defaultPresignExpiry
	}
	return r, nil
}

// ResolveImage returns ref unchanged when it is already a URL and a
// presigned GET URL when it is a storage key
func (r *S3ImageResolver) ResolveImage(ctx context.Context, ref string) (string, error) {
	if isURL(ref) {
		return ref, nil
	}
	key := objectKey(ref, r.bucket)
	if key == "" {
		return "", errors.New("storage key is required")
	}

	req, err := r.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.expiry))
	if err != nil {
		r.logger.Error("Failed to presign image URL",
			zap.String("bucket", r.bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to presign image %q: %w", key, err)
	}
	return req.URL, nil
}

// PublicImageResolver builds URLs for a public bucket without signing.
// Used when no storage credentials are configured.
type PublicImageResolver struct {
	baseURL string
	bucket  string
}

// NewPublicImageResolver creates a resolver that joins keys onto baseURL
func NewPublicImageResolver(baseURL, bucket string) *PublicImageResolver {
	return &PublicImageResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
	}
}

// ResolveImage returns ref unchanged when it is already a URL and
// baseURL/key otherwise
func (r *PublicImageResolver) ResolveImage(_ context.Context, ref string) (string, error) {
	if isURL(ref) {
		return ref, nil
	}
	key := objectKey(ref, r.bucket)
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if r.baseURL == "" {
		return "", errors.New("public storage URL is not configured")
	}
	return r.baseURL + "/" + key, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// objectKey strips a leading slash and a leading bucket segment from ref
func objectKey(ref, bucket string) string {
	key := strings.TrimLeft(strings.TrimSpace(ref), "/")
	if bucket != "" {
		key = strings.TrimPrefix(key, bucket+"/")
	}
	return key
}
