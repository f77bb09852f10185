package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrLocalFileNotFound is returned by Put when the upload source is missing.
	ErrLocalFileNotFound = errors.New("local file not found")
	// ErrNotRegularFile is returned by Put when the upload source is a directory or device.
	ErrNotRegularFile = errors.New("local path is not a regular file")
	// ErrStorageUnavailable wraps any network, auth or service failure of the store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

func unavailable(op string, target fmt.Stringer, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStorageUnavailable, op, target, err)
}

type bucketName string

func (b bucketName) String() string { return string(b) }
