// internal/service/object_service.go
package service

import (
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/internal/workdir"
)

// ErrBucketRequired is returned when neither the caller nor the config names a bucket.
var ErrBucketRequired = errors.New("bucket is required")

// ErrKeyRequired is returned when an object key is empty after trimming.
var ErrKeyRequired = errors.New("object key is required")

// UploadResult describes an object written by ObjectService.
type UploadResult struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

type ObjectService struct {
	store         storage.ObjectStorage
	workdir       *workdir.Workdir
	secrets       domain.Secrets
	opts          storage.Options
	defaultBucket string
}

func NewObjectService(store storage.ObjectStorage, wd *workdir.Workdir, secrets domain.Secrets, opts storage.Options, defaultBucket string) *ObjectService {
	return &ObjectService{
		store:         store,
		workdir:       wd,
		secrets:       secrets,
		opts:          opts,
		defaultBucket: defaultBucket,
	}
}

// UploadFile saves an uploaded file to the working directory, pushes it to
// the store and removes the local copy. An empty key uses the generated
// local file name.
func (s *ObjectService) UploadFile(ctx context.Context, fh *multipart.FileHeader, bucket, key string) (*UploadResult, error) {
	bucket, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}

	localPath, err := s.workdir.Materialize(fh)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", localPath).Msg("failed to remove local upload copy")
		}
	}()

	return s.upload(ctx, localPath, bucket, key)
}

// UploadLocal pushes an existing local file to the store.
func (s *ObjectService) UploadLocal(ctx context.Context, localPath, bucket, key string) (*UploadResult, error) {
	bucket, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, localPath, bucket, key)
}

func (s *ObjectService) upload(ctx context.Context, localPath, bucket, key string) (*UploadResult, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		key = filepath.Base(localPath)
	}

	loc := storage.Location{Bucket: bucket, Key: key}
	if err := s.store.Put(ctx, localPath, loc, s.secrets, s.opts); err != nil {
		return nil, err
	}

	return &UploadResult{Bucket: bucket, Key: key, URL: s.store.URL(loc)}, nil
}

// ListObjects returns one page of objects in bucket.
func (s *ObjectService) ListObjects(ctx context.Context, bucket string) ([]storage.ObjectInfo, error) {
	bucket, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, bucket, s.secrets, s.opts)
}

// DeleteObject removes bucket/key; missing keys are not an error.
func (s *ObjectService) DeleteObject(ctx context.Context, bucket, key string) error {
	loc, err := s.location(bucket, key)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, loc, s.secrets, s.opts)
}

// ObjectURL returns the public URL of bucket/key.
func (s *ObjectService) ObjectURL(bucket, key string) (string, error) {
	loc, err := s.location(bucket, key)
	if err != nil {
		return "", err
	}
	return s.store.URL(loc), nil
}

// PurgeWorkdir empties the working directory.
func (s *ObjectService) PurgeWorkdir() ([]string, error) {
	removed, err := s.workdir.Purge()
	if err != nil {
		return removed, err
	}
	log.Info().Int("count", len(removed)).Str("dir", s.workdir.Dir()).Msg("working directory purged")
	return removed, nil
}

func (s *ObjectService) bucket(bucket string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if bucket == "" {
		return "", ErrBucketRequired
	}
	return bucket, nil
}

func (s *ObjectService) location(bucket, key string) (storage.Location, error) {
	bucket, err := s.bucket(bucket)
	if err != nil {
		return storage.Location{}, err
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return storage.Location{}, ErrKeyRequired
	}
	return storage.Location{Bucket: bucket, Key: key}, nil
}
