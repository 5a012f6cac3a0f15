package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Gallery stores copies of generated images in an S3-compatible bucket.
type Gallery struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string // optional base URL for a public bucket
	linkTTL   time.Duration
}

// NewGallery creates an S3-backed gallery client.
func NewGallery(endpoint, region, bucket, accessKey, secretKey string, useSSL bool, publicURL string, linkTTL time.Duration) (*Gallery, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	if endpoint != "" {
		configOpts = append(configOpts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing and relaxed checksums keep MinIO and R2 working.
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Msg("Gallery storage initialized")

	return &Gallery{
		s3Client:  s3Client,
		bucket:    bucket,
		publicURL: publicURL,
		linkTTL:   linkTTL,
	}, nil
}

// Save uploads one generated image under the given key and returns a link to
// it: the public URL when the bucket is public, a presigned URL otherwise.
func (g *Gallery) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := g.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Info().
		Str("bucket", g.bucket).
		Str("key", key).
		Int("size_bytes", len(data)).
		Msg("Image saved to gallery")

	if g.publicURL != "" {
		return strings.TrimSuffix(g.publicURL, "/") + "/" + key, nil
	}
	return g.presignGet(ctx, key)
}

func (g *Gallery) presignGet(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(g.s3Client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = g.linkTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
