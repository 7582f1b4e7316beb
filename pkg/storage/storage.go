// Package storage archives uploaded bill attachments to S3-compatible object
// storage so the downstream lead consumers can fetch the original document.
// Archival is best-effort: the submission pipeline never fails on storage
// errors.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/trimwise/trimwise-api/pkg/logger"
	"github.com/trimwise/trimwise-api/pkg/metrics"
	"github.com/trimwise/trimwise-api/pkg/retry"
	"go.uber.org/zap"
)

// Client represents an S3-compatible object storage client
type Client struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

// NewClient creates a new object storage client
func NewClient(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*Client, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	s3Client := s3.New(opts)

	logger.Info("Object storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &Client{
		s3Client:   s3Client,
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// Upload stores an attachment under the given key and returns its URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	start := time.Now()
	operation := "uploadAttachment"

	err := retry.Do(ctx, retry.StorageConfig(), operation, func() error {
		_, putErr := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return putErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to upload attachment: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()

	return c.ObjectURL(key), nil
}

// ObjectURL returns the public URL for a stored object
func (c *Client) ObjectURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.endpoint, "/"), c.bucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", c.bucketName, key)
}

// ArchiveKey builds the object key for a submission's bill attachment.
// Keys are prefixed by date so buckets stay browsable for support staff.
func ArchiveKey(referenceID, fileName string) string {
	name := strings.ToLower(strings.ReplaceAll(fileName, " ", "-"))
	return fmt.Sprintf("bills/%s/%s/%s", time.Now().UTC().Format("2006-01-02"), referenceID, name)
}
