package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lepinkainen/twitterss/pkg/urlutils"
)

// S3Config configures the S3 sink
type S3Config struct {
	Bucket string
	Region string
	// Endpoint overrides the S3 endpoint for S3-compatible services
	Endpoint     string
	UsePathStyle bool
	// BaseURL is the public URL prefix of the bucket
	BaseURL string
}

// PutObjectAPI is the subset of the S3 client used by the sink
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads objects to an S3 bucket
type S3Sink struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
}

// NewS3Sink creates a sink using ambient AWS credentials
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{}
	if region := strings.TrimSpace(cfg.Region); region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewS3SinkWithClient(client, cfg), nil
}

// NewS3SinkWithClient creates a sink around an existing client
func NewS3SinkWithClient(client PutObjectAPI, cfg S3Config) *S3Sink {
	return &S3Sink{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: s3BaseURL(cfg),
	}
}

func s3BaseURL(cfg S3Config) string {
	switch {
	case cfg.BaseURL != "":
		return strings.TrimRight(cfg.BaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return "https://s3.amazonaws.com/" + cfg.Bucket
	}
}

// Put uploads the object, replacing any previous version
func (s *S3Sink) Put(ctx context.Context, obj Object) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		Body:        bytes.NewReader(obj.Body),
		ContentType: aws.String(obj.ContentType),
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}
	if obj.ContentEncoding != "" {
		input.ContentEncoding = aws.String(obj.ContentEncoding)
	}
	if obj.PublicRead {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object %s/%s: %w", s.bucket, obj.Key, err)
	}

	slog.Debug("Uploaded object", "bucket", s.bucket, "key", obj.Key, "bytes", len(obj.Body))
	return nil
}

// PublicURL returns the public URL of key
func (s *S3Sink) PublicURL(key string) string {
	return urlutils.JoinPath(s.baseURL, key)
}
