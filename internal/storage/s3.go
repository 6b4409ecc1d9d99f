package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/sanskruthi/fest-service/internal/config"
)

// S3Host uploads objects to a public-read bucket.
type S3Host struct {
	client s3iface.S3API
	bucket string
	region string
}

// NewS3Host opens an AWS session. Static credentials are used when both keys
// are set, otherwise the default provider chain applies.
func NewS3Host(cfg config.StorageConfig) (*S3Host, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return newS3Host(s3.New(sess), cfg.S3Bucket, cfg.S3Region), nil
}

func newS3Host(client s3iface.S3API, bucket, region string) *S3Host {
	return &S3Host{client: client, bucket: bucket, region: region}
}

func (h *S3Host) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(clean),
		Body:   body,
		ACL:    aws.String(s3.ObjectCannedACLPublicRead),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := h.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return h.objectURL(clean), nil
}

func (h *S3Host) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, h.objectURL(""))
	if _, err := h.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}
	return nil
}

func (h *S3Host) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", h.bucket, h.region, key)
}
