// Package s3 implements the ObjectStorage port against AWS S3, which holds
// the production audit record bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"qualityaudit/internal/config"
	"qualityaudit/internal/observability"
	"qualityaudit/internal/storage/types"
)

// Client implements the ObjectStorage interface for AWS S3.
type Client struct {
	s3Client *s3.Client
	config   *config.StorageConfig
	logger   observability.Logger
	metrics  observability.Metrics
}

// NewClient creates a new S3 storage client and verifies the configured
// bucket exists, creating it when missing.
func NewClient(cfg *config.StorageConfig, logger observability.Logger, metrics observability.Metrics) (*Client, error) {
	awsCfg, err := buildAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})

	client := &Client{
		s3Client: s3Client,
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	return client, nil
}

// Put stores an object in S3.
func (c *Client) Put(ctx context.Context, bucket, key string, reader io.Reader, metadata types.ObjectMetadata) error {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("storage.s3.put", time.Since(start).Seconds())
	}()

	if bucket == "" {
		bucket = c.config.Bucket
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, reader); err != nil {
		c.logger.Error(ctx, "failed to read content", err, observability.Fields{
			"bucket": bucket,
			"key":    key,
		})
		return fmt.Errorf("failed to read content: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(metadata.ContentType),
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		c.metrics.RecordError("storage.s3.put", "connectivity")
		c.logger.Error(ctx, "failed to put object", err, observability.Fields{
			"bucket": bucket,
			"key":    key,
		})
		return fmt.Errorf("%w: failed to put object %s: %v", types.ErrUnreachable, key, err)
	}

	c.metrics.RecordSuccess("storage.s3.put")
	c.metrics.RecordDocumentSize("json", int64(buf.Len()))
	c.logger.Debug(ctx, "object stored", observability.Fields{
		"bucket": bucket,
		"key":    key,
		"size":   buf.Len(),
	})

	return nil
}

// Get retrieves an object from S3.
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if bucket == "" {
		bucket = c.config.Bucket
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := c.s3Client.GetObject(ctx, input)
	if err != nil {
		if isNotFoundError(err) {
			c.logger.Debug(ctx, "object not found", observability.Fields{
				"bucket": bucket,
				"key":    key,
			})
			return nil, types.ErrObjectNotFound
		}
		c.metrics.RecordError("storage.s3.get", "connectivity")
		c.logger.Error(ctx, "failed to get object", err, observability.Fields{
			"bucket": bucket,
			"key":    key,
		})
		return nil, fmt.Errorf("%w: failed to get object %s: %v", types.ErrUnreachable, key, err)
	}

	c.metrics.RecordSuccess("storage.s3.get")
	return result.Body, nil
}

// Exists checks if an object exists in S3.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" {
		bucket = c.config.Bucket
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.HeadObject(ctx, input); err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		c.metrics.RecordError("storage.s3.exists", "connectivity")
		return false, fmt.Errorf("%w: failed to check object existence: %v", types.ErrUnreachable, err)
	}

	return true, nil
}

// List returns the objects under a prefix, following S3's paginated listing.
func (c *Client) List(ctx context.Context, bucket, prefix string) ([]types.ObjectInfo, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("storage.s3.list", time.Since(start).Seconds())
	}()

	if bucket == "" {
		bucket = c.config.Bucket
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []types.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			c.metrics.RecordError("storage.s3.list", "connectivity")
			c.logger.Error(ctx, "failed to list objects", err, observability.Fields{
				"bucket": bucket,
				"prefix": prefix,
			})
			return nil, fmt.Errorf("%w: failed to list objects: %v", types.ErrUnreachable, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}

	c.metrics.RecordSuccess("storage.s3.list")
	c.logger.Debug(ctx, "objects listed", observability.Fields{
		"bucket": bucket,
		"prefix": prefix,
		"count":  len(objects),
	})

	return objects, nil
}

// ensureBucketExists checks if the configured bucket exists and creates it
// when it does not.
func (c *Client) ensureBucketExists(ctx context.Context) error {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.config.Bucket),
	})
	if err != nil {
		var nse *s3types.NotFound
		if errors.As(err, &nse) {
			c.logger.Info(ctx, "bucket does not exist, attempting to create", observability.Fields{
				"bucket": c.config.Bucket,
			})
			return c.createBucket(ctx, c.config.Bucket)
		}
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	return nil
}

func (c *Client) createBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	// Location constraint required outside us-east-1
	if c.config.S3.Region != "" && c.config.S3.Region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.config.S3.Region),
		}
	}

	if _, err := c.s3Client.CreateBucket(ctx, input); err != nil {
		var bae *s3types.BucketAlreadyExists
		var baoyb *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &bae) || errors.As(err, &baoyb) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	c.logger.Info(ctx, "bucket created", observability.Fields{
		"bucket": bucket,
	})
	return nil
}

// buildAWSConfig builds the AWS configuration from the storage config.
func buildAWSConfig(storageConfig *config.StorageConfig) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	s3Config := storageConfig.S3

	if s3Config.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(s3Config.Region))
	}

	if s3Config.AccessKeyID != "" && s3Config.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3Config.AccessKeyID,
				s3Config.SecretAccessKey,
				"",
			),
		))
	}

	optFns = append(optFns, awsconfig.WithRetryMaxAttempts(storageConfig.MaxRetries))
	optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{
		Timeout: storageConfig.Timeout,
	}))

	return awsconfig.LoadDefaultConfig(context.Background(), optFns...)
}

// isNotFoundError checks if an error is an S3 not found error.
func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nse *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nse)
}
