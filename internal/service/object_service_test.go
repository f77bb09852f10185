package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/internal/workdir"
)

type memStore struct {
	objects  map[storage.Location][]byte
	secrets  []domain.Secrets
	putErr   error
	lastPath string
}

func newMemStore() *memStore {
	return &memStore{objects: map[storage.Location][]byte{}}
}

func (m *memStore) Put(ctx context.Context, localPath string, loc storage.Location, secrets domain.Secrets, opts storage.Options) error {
	m.secrets = append(m.secrets, secrets)
	if m.putErr != nil {
		return m.putErr
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return storage.ErrLocalFileNotFound
	}
	m.lastPath = localPath
	m.objects[loc] = data
	return nil
}

func (m *memStore) URL(loc storage.Location) string { return storage.PublicURL(loc) }

func (m *memStore) List(ctx context.Context, bucket string, secrets domain.Secrets, opts storage.Options) ([]storage.ObjectInfo, error) {
	out := make([]storage.ObjectInfo, 0)
	for loc, data := range m.objects {
		if loc.Bucket == bucket {
			out = append(out, storage.ObjectInfo{Key: loc.Key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, loc storage.Location, secrets domain.Secrets, opts storage.Options) error {
	delete(m.objects, loc)
	return nil
}

func (m *memStore) Get(ctx context.Context, loc storage.Location, opts storage.Options) ([]byte, error) {
	return m.objects[loc], nil
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newTestService(t *testing.T, store storage.ObjectStorage, defaultBucket string) (*ObjectService, *workdir.Workdir) {
	t.Helper()
	wd, err := workdir.New(t.TempDir())
	require.NoError(t, err)
	secrets := domain.Secrets{domain.SecretAWSAccessKeyID: "id"}
	return NewObjectService(store, wd, secrets, storage.Options{}, defaultBucket), wd
}

func TestUploadFile_PutsAndCleansUp(t *testing.T) {
	store := newMemStore()
	svc, wd := newTestService(t, store, "media")

	result, err := svc.UploadFile(context.Background(), uploadHeader(t, "talk.mp3", "ID3"), "", "")
	require.NoError(t, err)

	assert.Equal(t, "media", result.Bucket)
	assert.Equal(t, ".mp3", filepath.Ext(result.Key))
	assert.Equal(t, "https://media.s3.amazonaws.com/"+result.Key, result.URL)
	assert.Equal(t, []byte("ID3"), store.objects[storage.Location{Bucket: "media", Key: result.Key}])
	assert.Equal(t, "id", store.secrets[0].Get(domain.SecretAWSAccessKeyID))

	entries, err := os.ReadDir(wd.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "local copy should be removed after upload")
}

func TestUploadFile_ExplicitKey(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, "")

	result, err := svc.UploadFile(context.Background(), uploadHeader(t, "a.wav", "x"), "other", "/audio/a.wav")
	require.NoError(t, err)
	assert.Equal(t, &UploadResult{Bucket: "other", Key: "audio/a.wav", URL: "https://other.s3.amazonaws.com/audio/a.wav"}, result)
}

func TestUploadFile_StoreFailureSurfaces(t *testing.T) {
	store := newMemStore()
	store.putErr = storage.ErrStorageUnavailable
	svc, wd := newTestService(t, store, "media")

	_, err := svc.UploadFile(context.Background(), uploadHeader(t, "a.wav", "x"), "", "")
	assert.True(t, errors.Is(err, storage.ErrStorageUnavailable))

	entries, err := os.ReadDir(wd.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBucketRequired(t *testing.T) {
	svc, _ := newTestService(t, newMemStore(), "")

	_, err := svc.ListObjects(context.Background(), " ")
	assert.ErrorIs(t, err, ErrBucketRequired)
	assert.ErrorIs(t, svc.DeleteObject(context.Background(), "", "k"), ErrBucketRequired)
	_, err = svc.ObjectURL("", "k")
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func TestKeyRequired(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, "media")

	for _, key := range []string{"", "/", " / "} {
		assert.ErrorIs(t, svc.DeleteObject(context.Background(), "", key), ErrKeyRequired)
		_, err := svc.ObjectURL("media", key)
		assert.ErrorIs(t, err, ErrKeyRequired)
	}
}

func TestListDeleteURL(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(t, store, "media")
	path := filepath.Join(t.TempDir(), "local.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	_, err := svc.UploadLocal(context.Background(), path, "", "docs/local.txt")
	require.NoError(t, err)

	objects, err := svc.ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []storage.ObjectInfo{{Key: "docs/local.txt", Size: 3}}, objects)

	url, err := svc.ObjectURL("media", "/docs/local.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.amazonaws.com/docs/local.txt", url)

	require.NoError(t, svc.DeleteObject(context.Background(), "", "/docs/local.txt"))
	require.NoError(t, svc.DeleteObject(context.Background(), "", "docs/local.txt"))
	objects, err = svc.ListObjects(context.Background(), "media")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestPurgeWorkdir(t *testing.T) {
	svc, wd := newTestService(t, newMemStore(), "media")
	require.NoError(t, os.WriteFile(filepath.Join(wd.Dir(), "leftover.wav"), nil, 0o644))

	removed, err := svc.PurgeWorkdir()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(wd.Dir(), "leftover.wav")}, removed)
}
