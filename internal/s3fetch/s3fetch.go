// Package s3fetch implements the S3 fetcher backend: download and
// upload of an archive object to an S3-compatible bucket, via
// aws-sdk-go-v2. This is the one domain dependency in this module with no
// grounding in the example pack — no retrieved repo touches object storage
// — and is wired in as the standard ecosystem choice for S3 access in Go.
package s3fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Error string

func (e s3Error) Error() string { return string(e) }

// ErrS3 is a sentinel error for all errors that originate from this
// package.
const ErrS3 s3Error = "s3 backend error"

// ErrNotFound marks a missing object, the S3 analogue of a 404.
const ErrNotFound s3Error = "object not found"

// Location addresses a single object in a bucket.
type Location struct {
	Bucket string
	Key    string
	Region string
}

// Client wraps an S3 API client bound to a single region.
type Client struct {
	api *s3.Client
}

// NewClient builds a [Client] using the ambient AWS credential chain
// (environment, shared config, instance role), matching how the rest of
// this module resolves transport credentials out-of-band.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config: %w: %w", err, ErrS3)
	}

	return &Client{api: s3.NewFromConfig(cfg)}, nil
}

// Download streams the object at loc into w.
func (c *Client) Download(ctx context.Context, loc Location, w io.Writer) error {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return classifyError(loc, err)
	}
	defer func() { _ = out.Body.Close() }()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("could not read object %s/%s: %w: %w", loc.Bucket, loc.Key, err, ErrS3)
	}

	return nil
}

// Upload writes r's content to loc, used by the mirror-producing Archive
// operation.
func (c *Client) Upload(ctx context.Context, loc Location, r io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("could not upload object %s/%s: %w: %w", loc.Bucket, loc.Key, err, ErrS3)
	}

	return nil
}

// Exists reports whether loc is present in the bucket.
func (c *Client) Exists(ctx context.Context, loc Location) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err == nil {
		return true, nil
	}

	if isNotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("could not check object %s/%s: %w: %w", loc.Bucket, loc.Key, err, ErrS3)
}

// ListObjects enumerates the keys under loc's prefix, paging through
// ListObjectsV2 as needed. loc.Key is treated as a prefix, not a single
// object key: version discovery against an S3-backed mirror lists the
// bucket rather than crawling HTML links, since there is nothing to crawl.
func (c *Client) ListObjects(ctx context.Context, loc Location) ([]string, error) {
	var keys []string

	var token *string
	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(loc.Bucket),
			Prefix:            aws.String(loc.Key),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("could not list objects under %s/%s: %w: %w", loc.Bucket, loc.Key, err, ErrS3)
		}

		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	return keys, nil
}

func classifyError(loc Location, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s/%s: %w: %w", loc.Bucket, loc.Key, ErrNotFound, ErrS3)
	}

	return fmt.Errorf("could not download object %s/%s: %w: %w", loc.Bucket, loc.Key, err, ErrS3)
}

func isNotFound(err error) bool {
	type errorCoder interface{ ErrorCode() string }

	for e := err; e != nil; e = unwrap(e) {
		coder, ok := e.(errorCoder)
		if !ok {
			continue
		}

		switch coder.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}

	return u.Unwrap()
}
