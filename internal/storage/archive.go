package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("response archive is not configured")

// ResponseArchive keeps a copy of every raw model response in R2-compatible
// object storage so disputed detections can be replayed against the original
// text.
type ResponseArchive struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	publicBaseURL string
}

type archiveConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	PublicBaseURL string
}

func NewResponseArchiveFromEnv() (*ResponseArchive, error) {
	cfg := archiveConfig{
		Endpoint:      strings.TrimSpace(os.Getenv("R2_ENDPOINT")),
		AccessKey:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
		SecretKey:     strings.TrimSpace(os.Getenv("R2_SECRET_ACCESS_KEY")),
		Bucket:        strings.TrimSpace(os.Getenv("R2_BUCKET")),
		Region:        strings.TrimSpace(os.Getenv("R2_REGION")),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("R2_PUBLIC_BASE_URL")), "/"),
	}

	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				HostnameImmutable: true,
			}, nil
		}
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	awsCfg := aws.Config{
		Region:                      cfg.Region,
		Credentials:                 credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		EndpointResolverWithOptions: resolver,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &ResponseArchive{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// ArchiveResponse stores one raw model response under a date-partitioned key
// and returns the object URL.
func (a *ResponseArchive) ArchiveResponse(ctx context.Context, raw string) (string, error) {
	if a == nil || a.client == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("empty response")
	}

	key := fmt.Sprintf("raw-responses/%s/%s.txt", time.Now().UTC().Format("2006/01/02"), uuid.New())
	input := &s3.PutObjectInput{
		Bucket:        &a.bucket,
		Key:           &key,
		Body:          strings.NewReader(raw),
		ContentType:   aws.String("text/plain; charset=utf-8"),
		ContentLength: aws.Int64(int64(len(raw))),
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("archive upload failed: %w", err)
	}
	return a.objectURL(key), nil
}

func (a *ResponseArchive) objectURL(key string) string {
	trimmedKey := strings.TrimLeft(key, "/")
	if a.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", a.publicBaseURL, a.bucket, trimmedKey)
	}
	return fmt.Sprintf("%s/%s/%s", a.endpoint, a.bucket, trimmedKey)
}
