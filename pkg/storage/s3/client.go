package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/angelmondragon/pantryplan-backend/pkg/config"
	"github.com/angelmondragon/pantryplan-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client writes objects to a single bucket.
type Client struct {
	api    objectAPI
	bucket string
	prefix string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient loads the default AWS credential chain for cfg.Region and
// checks the bucket is reachable.
func NewClient(ctx context.Context, cfg config.ExportConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 bucket name is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := NewFromAPI(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("s3 health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.Bucket), "s3 client initialized")
	}
	return client, nil
}

// NewFromAPI wraps an existing S3 API implementation.
func NewFromAPI(api objectAPI, bucket, prefix string) *Client {
	return &Client{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// ObjectKey joins name under the configured prefix.
func (c *Client) ObjectKey(name string) string {
	name = strings.TrimLeft(name, "/")
	if c == nil || c.prefix == "" {
		return name
	}
	return c.prefix + "/" + name
}

// Put uploads body under the prefixed key and returns that key.
func (c *Client) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	if c == nil || c.api == nil {
		return "", errors.New("s3 client not initialized")
	}
	key := c.ObjectKey(name)
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", c.bucket, key, err)
	}
	return key, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return err
}

func (c *Client) Close() error {
	return nil
}
