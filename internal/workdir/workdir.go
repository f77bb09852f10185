package workdir

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrWriteError is returned when a file cannot be written to the working directory.
var ErrWriteError = errors.New("working directory write failed")

// Workdir is a scratch directory for files on their way to object storage.
type Workdir struct {
	dir string
}

// New returns a Workdir rooted at dir, creating it if needed.
func New(dir string) (*Workdir, error) {
	if dir == "" {
		return nil, fmt.Errorf("working directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrWriteError, dir, err)
	}
	return &Workdir{dir: dir}, nil
}

// Dir returns the directory path.
func (w *Workdir) Dir() string {
	return w.dir
}

// Materialize saves an uploaded file under a fresh unique name that keeps
// the original extension and returns the new path.
func (w *Workdir) Materialize(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload %s: %v", ErrWriteError, fh.Filename, err)
	}
	defer src.Close()

	return w.MaterializeReader(fh.Filename, src)
}

// MaterializeReader is Materialize for callers that only hold a reader.
func (w *Workdir) MaterializeReader(filename string, r io.Reader) (string, error) {
	path := filepath.Join(w.dir, uuid.NewString()+filepath.Ext(filepath.Base(filename)))

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteError, err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: write %s: %v", ErrWriteError, path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: close %s: %v", ErrWriteError, path, err)
	}
	return path, nil
}

// Purge empties the working directory.
func (w *Workdir) Purge() ([]string, error) {
	return Purge(w.dir)
}

// Purge removes every entry directly inside dir and returns the removed
// paths. Subdirectories are not descended into, so a non-empty one stops
// the purge with an error. dir itself is kept.
func Purge(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	removed := make([]string, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
