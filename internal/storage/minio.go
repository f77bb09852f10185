package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/pkg/logger"
)

const defaultMinioEndpoint = "s3.amazonaws.com"

// MinioAPI is the subset of *minio.Client used by MinioClient.
type MinioAPI interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

var _ MinioAPI = (*minio.Client)(nil)

// MinioAPIFactory opens a new minio handle for one call.
type MinioAPIFactory func(opts Options) (MinioAPI, error)

// MinioClient implements ObjectStorage for S3-compatible services
// (MinIO, Sevalla, LocalStack) through minio-go.
type MinioClient struct {
	newAPI MinioAPIFactory
	log    zerolog.Logger
}

// MinioOption configures a MinioClient.
type MinioOption func(*MinioClient)

// WithMinioAPIFactory replaces the function used to open minio handles.
func WithMinioAPIFactory(f MinioAPIFactory) MinioOption {
	return func(c *MinioClient) {
		c.newAPI = f
	}
}

// WithMinioLogger replaces the client logger.
func WithMinioLogger(l zerolog.Logger) MinioOption {
	return func(c *MinioClient) {
		c.log = l
	}
}

// NewMinioClient builds a MinioClient that opens a fresh *minio.Client per call.
func NewMinioClient(opts ...MinioOption) *MinioClient {
	c := &MinioClient{
		newAPI: NewMinioAPI,
		log:    logger.Component("AWS"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewMinioAPI returns a *minio.Client for opts. The endpoint may carry an
// http:// or https:// scheme; without one TLS is used.
func NewMinioAPI(opts Options) (MinioAPI, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = defaultMinioEndpoint
	}
	secure := true
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		secure = false
		endpoint = strings.TrimPrefix(endpoint, "http://")
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	endpoint = strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/")

	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}

	lookup := minio.BucketLookupAuto
	if opts.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        minioCredentials(opts.Credentials),
		Secure:       secure,
		Region:       region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", endpoint, err)
	}
	return client, nil
}

func minioCredentials(creds Credentials) *miniocreds.Credentials {
	if creds.Complete() {
		return miniocreds.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, "")
	}
	return miniocreds.NewChainCredentials([]miniocreds.Provider{
		&miniocreds.EnvAWS{},
		&miniocreds.FileAWSCredentials{},
		&miniocreds.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})
}

// Put uploads the file content at localPath to loc with a public-read ACL.
func (c *MinioClient) Put(ctx context.Context, localPath string, loc Location, secrets domain.Secrets, opts Options) error {
	info, err := os.Stat(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrLocalFileNotFound, localPath)
		}
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, localPath)
	}

	api, err := c.newAPI(mergeOptions(opts, secrets))
	if err != nil {
		return unavailable("put", loc, err)
	}

	ctx, cancel := withRequestTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	_, err = api.FPutObject(ctx, loc.Bucket, loc.Key, localPath, minio.PutObjectOptions{
		ContentType:  detectContentType(localPath),
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
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
func (c *MinioClient) URL(loc Location) string {
	return PublicURL(loc)
}

// List returns at most one page of objects in bucket. minio-go pages
// internally, so the listing is cut off after defaultPageSize entries.
func (c *MinioClient) List(ctx context.Context, bucket string, secrets domain.Secrets, opts Options) ([]ObjectInfo, error) {
	api, err := c.newAPI(mergeOptions(opts, secrets))
	if err != nil {
		return nil, unavailable("list", bucketName(bucket), err)
	}

	ctx, cancel := withRequestTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	results := make([]ObjectInfo, 0)
	for object := range api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, unavailable("list", bucketName(bucket), object.Err)
		}
		results = append(results, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
			StorageClass: object.StorageClass,
		})
		if len(results) == defaultPageSize {
			break
		}
	}
	return results, nil
}

// Delete removes loc.
func (c *MinioClient) Delete(ctx context.Context, loc Location, secrets domain.Secrets, opts Options) error {
	api, err := c.newAPI(mergeOptions(opts, secrets))
	if err != nil {
		return unavailable("delete", loc, err)
	}

	ctx, cancel := withRequestTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	if err := api.RemoveObject(ctx, loc.Bucket, loc.Key, minio.RemoveObjectOptions{}); err != nil && !isMinioNotFound(err) {
		return unavailable("delete", loc, err)
	}

	c.log.Info().
		Str("bucket", loc.Bucket).
		Str("key", loc.Key).
		Msg("Deleted from S3")
	return nil
}

func isMinioNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// Get reads loc fully.
func (c *MinioClient) Get(ctx context.Context, loc Location, opts Options) ([]byte, error) {
	api, err := c.newAPI(opts)
	if err != nil {
		return nil, unavailable("get", loc, err)
	}

	ctx, cancel := withRequestTimeout(ctx, opts.RequestTimeout)
	defer cancel()

	object, err := api.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, unavailable("get", loc, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, unavailable("get", loc, err)
	}
	return data, nil
}

func withRequestTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

var _ ObjectStorage = (*MinioClient)(nil)
