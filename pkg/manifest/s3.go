package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectName is the key suffix of published manifests.
const ObjectName = "routes.json"

// ObjectPutter is the subset of *s3.Client used for publishing.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads manifests to an S3 bucket.
//
// Example usage:
//
//	client := manifest.NewS3Client(manifest.S3Config{Region: "us-east-1"})
//	pub := manifest.NewS3Publisher(client, "my-bucket", "sites/prod")
//	key, err := pub.Publish(ctx, manifest.FromRegistry(reg))
type S3Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Publisher creates a publisher writing to bucket under prefix.
func NewS3Publisher(client ObjectPutter, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default().With("component", "manifest"),
	}
}

// Key returns the object key manifests are written to.
func (p *S3Publisher) Key() string {
	return path.Join(p.prefix, ObjectName)
}

// Publish uploads m as JSON and returns the object key.
func (p *S3Publisher) Publish(ctx context.Context, m *Manifest) (string, error) {
	if p.bucket == "" {
		return "", errors.New("manifest: bucket is required")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, m, FormatJSON); err != nil {
		return "", err
	}

	key := p.Key()
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(buf.Bytes()),
		ContentType:  aws.String(FormatJSON.ContentType()),
		CacheControl: aws.String("no-cache"),
		Metadata: map[string]string{
			"manifest-version": strconv.Itoa(m.Version),
			"route-count":      strconv.Itoa(len(m.Routes)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	p.logger.Info("manifest published", "bucket", p.bucket, "key", key, "routes", len(m.Routes))
	return key, nil
}

// S3Config configures NewS3Client.
type S3Config struct {
	Region string

	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle addresses buckets as endpoint/bucket instead of subdomains.
	PathStyle bool
}

// NewS3Client creates an S3 client that reads static credentials from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.NewCredentialsCache(EnvCredentials()),
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// EnvCredentials returns a provider reading credentials from the standard
// AWS environment variables.
func EnvCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return creds, nil
	})
}
