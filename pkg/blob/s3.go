package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of the AWS S3 API the driver uses. Narrowed for
// mockability in tests.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores blobs in an S3 bucket. Safe for concurrent use.
type S3 struct {
	client S3Client
	bucket string
}

// S3Option configures the S3 driver.
type S3Option func(*s3Options)

type s3Options struct {
	client S3Client
}

// WithS3Client injects a pre-configured client, primarily for tests.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// NewS3 builds an S3 driver from cfg. Static credentials and a custom
// endpoint are optional to support both AWS and S3-compatible services.
func NewS3(ctx context.Context, cfg Config, opts ...S3Option) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		if cfg.S3Region == "" {
			return nil, ErrInvalidConfig
		}

		awsOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.S3Region),
		}
		if cfg.S3AccessKeyID != "" && cfg.S3SecretKey != "" {
			awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}

		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			}
			o.UsePathStyle = cfg.S3ForcePathStyle
		})
	}

	return &S3{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	// Count while uploading; S3 does not report the size back.
	counter := &countingReader{r: r}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   counter,
	})
	if err != nil {
		return 0, classifyS3Error(err, "put")
	}
	return counter.n, nil
}

func (s *S3) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, classifyS3Error(err, "get")
	}
	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, path string) error {
	// DeleteObject succeeds for missing keys, which matches the tolerated
	// missing-blob semantics.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return classifyS3Error(err, "delete")
	}
	return nil
}

func (s *S3) Exists(ctx context.Context, path string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	return err == nil
}

// Healthcheck probes the bucket with a HeadObject on a sentinel key. A
// missing key means the bucket answered and is considered healthy.
func (s *S3) Healthcheck(ctx context.Context) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(".healthcheck"),
	})
	if err != nil {
		if classified := classifyS3Error(err, "head"); !errors.Is(classified, ErrNotFound) {
			return classified
		}
	}
	return nil
}

// classifyS3Error maps AWS error codes to package sentinels so callers can
// use errors.Is without importing the SDK.
func classifyS3Error(err error, operation string) error {
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrNotFound
		case "NoSuchBucket":
			return fmt.Errorf("%w: bucket missing (%s)", ErrUnavailable, operation)
		case "AccessDenied":
			return fmt.Errorf("%w (%s)", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable", "RequestTimeout":
			return fmt.Errorf("%w (%s)", ErrUnavailable, operation)
		}
	}
	return fmt.Errorf("%w: s3 %s: %v", ErrUnavailable, operation, err)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
