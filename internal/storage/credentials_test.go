package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
)

func TestMergeCredentials(t *testing.T) {
	full := domain.Secrets{
		domain.SecretAWSAccessKeyID:     "secret-id",
		domain.SecretAWSSecretAccessKey: "secret-key",
	}

	tests := []struct {
		name    string
		partial Credentials
		secrets domain.Secrets
		want    Credentials
	}{
		{
			name:    "fills every missing field",
			partial: Credentials{},
			secrets: full,
			want:    Credentials{AccessKeyID: "secret-id", SecretAccessKey: "secret-key"},
		},
		{
			name:    "never overwrites present fields",
			partial: Credentials{AccessKeyID: "mine", SecretAccessKey: "also-mine"},
			secrets: full,
			want:    Credentials{AccessKeyID: "mine", SecretAccessKey: "also-mine"},
		},
		{
			name:    "mixes partial and secrets",
			partial: Credentials{SecretAccessKey: "mine"},
			secrets: full,
			want:    Credentials{AccessKeyID: "secret-id", SecretAccessKey: "mine"},
		},
		{
			name:    "nil secrets leave fields absent",
			partial: Credentials{AccessKeyID: "mine"},
			secrets: nil,
			want:    Credentials{AccessKeyID: "mine"},
		},
		{
			name:    "secrets missing a name leave it absent",
			partial: Credentials{},
			secrets: domain.Secrets{domain.SecretAWSAccessKeyID: "only-id"},
			want:    Credentials{AccessKeyID: "only-id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partial := tt.partial
			got := MergeCredentials(partial, tt.secrets)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.partial, partial, "input must not be modified")
		})
	}
}

func TestCredentialsComplete(t *testing.T) {
	assert.True(t, Credentials{AccessKeyID: "a", SecretAccessKey: "b"}.Complete())
	assert.False(t, Credentials{AccessKeyID: "a"}.Complete())
	assert.False(t, Credentials{}.Complete())
}

func TestNewBackend(t *testing.T) {
	s3Store, err := New(BackendS3)
	assert.NoError(t, err)
	assert.IsType(t, &S3Client{}, s3Store)

	defaultStore, err := New("")
	assert.NoError(t, err)
	assert.IsType(t, &S3Client{}, defaultStore)

	minioStore, err := New(BackendMinio)
	assert.NoError(t, err)
	assert.IsType(t, &MinioClient{}, minioStore)

	_, err = New("gcs")
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://bucket.s3.amazonaws.com/dir/file.mp3", PublicURL(Location{Bucket: "bucket", Key: "dir/file.mp3"}))
	assert.Equal(t, "bucket/dir/file.mp3", Location{Bucket: "bucket", Key: "dir/file.mp3"}.String())
}
