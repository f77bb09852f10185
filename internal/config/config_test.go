package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/transcribe-helpers/internal/storage"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := FromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "./working_dir", cfg.App.WorkingDir)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.Equal(t, filepath.Join(".", "proj_secrets", "secrets.json"), cfg.Secrets.LocalPath)
	assert.Equal(t, "secrets.json", cfg.Secrets.Key)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("APP_REPO_DIR", "/srv/app")
	v.Set("S3_ENDPOINT", "http://localhost:9000")
	v.Set("S3_USE_PATH_STYLE", true)
	v.Set("S3_REQUEST_TIMEOUT_SECONDS", 15)
	v.Set("SECRETS_BUCKET", "proj-config")

	cfg := FromViper(v)

	assert.Equal(t, "/srv/app/proj_secrets/secrets.json", cfg.Secrets.LocalPath)
	assert.Equal(t, storage.Options{
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		UsePathStyle:   true,
		RequestTimeout: 15 * time.Second,
	}, cfg.Storage.Options())

	loader := cfg.LoaderConfig()
	assert.Equal(t, storage.Location{Bucket: "proj-config", Key: "secrets.json"}, loader.Remote)
	assert.Equal(t, cfg.Secrets.LocalPath, loader.LocalPath)
}

func TestFromViper_ExplicitSecretsPath(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("SECRETS_LOCAL_PATH", "/etc/proj/secrets.json")

	assert.Equal(t, "/etc/proj/secrets.json", FromViper(v).Secrets.LocalPath)
}
