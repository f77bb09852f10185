package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/pkg/logger"
)

const defaultRegion = "us-east-1"

// S3API is the subset of *s3.Client used by S3Client.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3APIFactory opens a new S3 handle for one call.
type S3APIFactory func(ctx context.Context, opts Options) (S3API, error)

// S3Client implements ObjectStorage on top of aws-sdk-go-v2.
type S3Client struct {
	newAPI S3APIFactory
	log    zerolog.Logger
}

// S3Option configures an S3Client.
type S3Option func(*S3Client)

// WithAPIFactory replaces the function used to open S3 handles.
func WithAPIFactory(f S3APIFactory) S3Option {
	return func(c *S3Client) {
		c.newAPI = f
	}
}

// WithS3Logger replaces the client logger.
func WithS3Logger(l zerolog.Logger) S3Option {
	return func(c *S3Client) {
		c.log = l
	}
}

// NewS3Client builds an S3Client that opens a fresh *s3.Client per call.
func NewS3Client(opts ...S3Option) *S3Client {
	c := &S3Client{
		newAPI: NewS3API,
		log:    logger.Component("AWS"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewS3API loads an AWS config for opts and returns a new *s3.Client.
// Static credentials are used only when both halves are present; otherwise
// the SDK default credential chain applies.
func NewS3API(ctx context.Context, opts Options) (S3API, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if opts.Credentials.Complete() {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.Credentials.AccessKeyID, opts.Credentials.SecretAccessKey, ""),
		))
	}
	if opts.RequestTimeout > 0 {
		loadOpts = append(loadOpts, config.WithHTTPClient(
			awshttp.NewBuildableClient().WithTimeout(opts.RequestTimeout),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// Put uploads the file content at localPath to loc with a public-read ACL.
func (c *S3Client) Put(ctx context.Context, localPath string, loc Location, secrets domain.Secrets, opts Options) error {
	file, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrLocalFileNotFound, localPath)
		}
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, localPath)
	}

	api, err := c.newAPI(ctx, mergeOptions(opts, secrets))
	if err != nil {
		return unavailable("put", loc, err)
	}

	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(detectContentType(localPath)),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return unavailable("put", loc, err)
	}

	c.log.Info().
		Str("local_path", localPath).
		Str("bucket", loc.Bucket).
		Str("key", loc.Key).
		Msg("Put to S3")
	return nil
}

// URL returns the public URL of loc.
func (c *S3Client) URL(loc Location) string {
	return PublicURL(loc)
}

// List returns the first page of objects in bucket.
func (c *S3Client) List(ctx context.Context, bucket string, secrets domain.Secrets, opts Options) ([]ObjectInfo, error) {
	api, err := c.newAPI(ctx, mergeOptions(opts, secrets))
	if err != nil {
		return nil, unavailable("list", bucketName(bucket), err)
	}

	out, err := api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return nil, unavailable("list", bucketName(bucket), err)
	}

	results := make([]ObjectInfo, 0, len(out.Contents))
	for _, object := range out.Contents {
		results = append(results, ObjectInfo{
			Key:          aws.ToString(object.Key),
			Size:         aws.ToInt64(object.Size),
			LastModified: aws.ToTime(object.LastModified),
			ETag:         aws.ToString(object.ETag),
			StorageClass: string(object.StorageClass),
		})
	}
	return results, nil
}

// Delete removes loc.
func (c *S3Client) Delete(ctx context.Context, loc Location, secrets domain.Secrets, opts Options) error {
	api, err := c.newAPI(ctx, mergeOptions(opts, secrets))
	if err != nil {
		return unavailable("delete", loc, err)
	}

	_, err = api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil && !isNotFound(err) {
		return unavailable("delete", loc, err)
	}

	c.log.Info().
		Str("bucket", loc.Bucket).
		Str("key", loc.Key).
		Msg("Deleted from S3")
	return nil
}

// Get reads loc fully.
func (c *S3Client) Get(ctx context.Context, loc Location, opts Options) ([]byte, error) {
	api, err := c.newAPI(ctx, opts)
	if err != nil {
		return nil, unavailable("get", loc, err)
	}

	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, unavailable("get", loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, unavailable("get", loc, err)
	}
	return data, nil
}

// isNotFound reports whether err is a store-side "no such key" answer.
// AWS itself returns 204 for missing keys; S3-compatible stores may not.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

var _ ObjectStorage = (*S3Client)(nil)
