package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
)

// Backend names a store implementation.
type Backend string

const (
	BackendS3    Backend = "s3"
	BackendMinio Backend = "minio"
)

// defaultPageSize is the S3 default for a single ListObjectsV2 response.
const defaultPageSize = 1000

// Location addresses one object. Bucket and key are passed to the store as is.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return l.Bucket + "/" + l.Key
}

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
	StorageClass string    `json:"storage_class,omitempty"`
}

// Options holds the connection settings for a single call.
type Options struct {
	Region         string
	Endpoint       string
	UsePathStyle   bool
	RequestTimeout time.Duration
	Credentials    Credentials
}

// ObjectStorage captures the S3-compatible operations the helpers need.
// Each call opens its own connection; nothing is shared between calls.
type ObjectStorage interface {
	// Put uploads the file at localPath to loc with a public-read ACL.
	Put(ctx context.Context, localPath string, loc Location, secrets domain.Secrets, opts Options) error
	// URL returns the public URL of loc. It never touches the network.
	URL(loc Location) string
	// List returns a single page of objects in bucket.
	List(ctx context.Context, bucket string, secrets domain.Secrets, opts Options) ([]ObjectInfo, error)
	// Delete removes loc. Deleting a missing key is not an error.
	Delete(ctx context.Context, loc Location, secrets domain.Secrets, opts Options) error
	// Get reads loc fully using only the credentials in opts.
	Get(ctx context.Context, loc Location, opts Options) ([]byte, error)
}

// New returns the ObjectStorage implementation for backend.
func New(backend Backend) (ObjectStorage, error) {
	switch backend {
	case "", BackendS3:
		return NewS3Client(), nil
	case BackendMinio:
		return NewMinioClient(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// PublicURL builds the virtual-hosted-style URL of a publicly readable object.
func PublicURL(loc Location) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", loc.Bucket, loc.Key)
}
