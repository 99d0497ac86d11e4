package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type Config struct {
	Bucket      string `env:"S3_BUCKET,required"`                 // Bucket stores uploaded receipts.
	Region      string `env:"S3_REGION" envDefault:"eu-west-1"`   // Region is the bucket's AWS region.
	AccessKeyID string `env:"S3_ACCESS_KEY_ID"`                   // AccessKeyID; empty falls back to the ambient credential chain.
	SecretKey   string `env:"S3_SECRET_ACCESS_KEY"`               // SecretKey pairs with AccessKeyID.
	Endpoint    string `env:"S3_ENDPOINT"`                        // Endpoint overrides the AWS endpoint for S3-compatible services.
	BaseURL     string `env:"S3_BASE_URL"`                        // BaseURL is the public URL prefix for stored objects.
}

// Client is the subset of the S3 API the store uses.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Store uploads and deletes receipt objects. Safe for concurrent use.
type Store struct {
	client  Client
	bucket  string
	baseURL string
}

// Option configures a Store.
type Option func(*Store)

// WithClient injects a pre-built S3 client, bypassing AWS config resolution.
// Used by tests and by deployments with custom client middleware.
func WithClient(client Client) Option {
	return func(s *Store) { s.client = client }
}

// New creates a Store. Unless WithClient is given, an S3 client is resolved
// from cfg, using static credentials when provided.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	store := &Store{
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
	}
	return store, nil
}

// Upload stores the object under key and returns its public URL.
func (s *Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Join(ErrUploadFailed, err)
	}
	return s.URL(key), nil
}

// Delete removes the object under key. Deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Exists reports whether an object is stored under key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// URL returns the public URL for key.
func (s *Store) URL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
