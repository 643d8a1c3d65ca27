package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client lists a public bucket through the AWS SDK with anonymous credentials
type S3Client struct {
	client  *s3.Client
	config  *Config
	timeout bool
}

// NewS3Client creates a new S3 client from configuration
func NewS3Client(ctx context.Context, cfg *Config) (*S3Client, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.AnonymousCredentials{}),
		config.WithRegion(cfg.Region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.GetEndpointURL())
		o.UsePathStyle = !cfg.VirtualHosted()
	})

	return &S3Client{
		client:  client,
		config:  cfg,
		timeout: cfg.Timeout > 0,
	}, nil
}

// FetchListing lists folders and files directly under prefix
func (c *S3Client) FetchListing(ctx context.Context, prefix string) (*Listing, error) {
	if c.timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.config.Bucket),
		Delimiter: aws.String(Delimiter),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	result, err := c.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, c.wrapError(prefix, err)
	}

	listing := &Listing{
		Prefix:    prefix,
		Truncated: aws.ToBool(result.IsTruncated),
		Folders:   make([]Folder, 0, len(result.CommonPrefixes)),
		Files:     make([]File, 0, len(result.Contents)),
	}

	// Add directories (common prefixes)
	for _, p := range result.CommonPrefixes {
		key := aws.ToString(p.Prefix)
		if key != "" {
			listing.Folders = append(listing.Folders, Folder{Key: key})
		}
	}

	// Add files
	for _, obj := range result.Contents {
		key := aws.ToString(obj.Key)
		if key == "" || strings.HasSuffix(key, Delimiter) { // Skip directory markers
			continue
		}
		listing.Files = append(listing.Files, File{
			Key:          key,
			LastModified: aws.ToTime(obj.LastModified),
			Size:         obj.Size,
		})
	}

	return listing, nil
}

// wrapError converts SDK failures into a FetchError carrying the HTTP status.
func (c *S3Client) wrapError(prefix string, err error) error {
	fetchErr := &FetchError{
		Op:  "ListObjectsV2",
		URL: ListingURL(c.config.BucketURL(), prefix),
		Err: err,
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		fetchErr.StatusCode = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fetchErr.Err = fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	return fetchErr
}
