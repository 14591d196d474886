package source

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to fetch snapshots.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates a snapshot object.
type S3Config struct {
	Bucket string
	Key    string
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores and
	// switches to path-style addressing.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials; when empty
	// the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client creates an S3 client from cfg
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// LoadS3 fetches and decodes a snapshot object, detecting the format from
// its key.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) ([]TradeRecord, error) {
	format, compressed, err := DetectFormat(key)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	records, err := Decode(out.Body, format, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode s3://%s/%s: %w", bucket, key, err)
	}
	return records, nil
}

// NewS3Source loads a snapshot object into a memory-backed source.
func NewS3Source(ctx context.Context, client ObjectGetter, bucket, key string) (*MemorySource, error) {
	records, err := LoadS3(ctx, client, bucket, key)
	if err != nil {
		return nil, err
	}
	src := NewMemorySource(records)
	src.name = "s3"
	return src, nil
}
