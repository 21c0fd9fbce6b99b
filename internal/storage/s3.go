package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Params configures an S3Storage.
type S3Params struct {
	Region          string
	Bucket          string
	AccessKeyID     string // optional; the default credential chain is used when empty
	SecretAccessKey string
	Endpoint        string // optional; set for S3-compatible endpoints, enables path-style
	PublicBase      string
}

// S3Storage implements Storage on AWS S3. Large files are streamed as
// multipart uploads by the SDK upload manager.
type S3Storage struct {
	uploader   *manager.Uploader
	bucket     string
	publicBase string
}

// NewS3Storage loads the AWS configuration and returns an S3Storage.
func NewS3Storage(ctx context.Context, params S3Params) (*S3Storage, error) {
	if params.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("bucket must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
	}
	if params.AccessKeyID != "" && params.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := params.PublicBase
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", params.Bucket, params.Region)
	}

	return &S3Storage{
		uploader:   manager.NewUploader(client),
		bucket:     params.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload streams reader to S3 under key. The upload manager decides between
// a single PUT and a multipart upload; size is not needed.
func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, _ int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return mapS3Error(err, "put object", key)
	}
	return nil
}

// PublicURL returns the virtual-hosted URL for key, or PublicBase + key when
// a public base was configured.
func (s *S3Storage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}
