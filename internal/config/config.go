// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/transcribe-helpers/internal/secrets"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Storage StorageConfig
	Secrets SecretsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type AppConfig struct {
	RepoDir    string
	WorkingDir string
	LogLevel   string
	LogFormat  string
}

type StorageConfig struct {
	Backend               string
	Region                string
	Endpoint              string
	UsePathStyle          bool
	RequestTimeoutSeconds int
	DefaultBucket         string
}

type SecretsConfig struct {
	LocalPath string
	Bucket    string
	Key       string
}

// Options converts the storage section into per-call store options.
func (c StorageConfig) Options() storage.Options {
	return storage.Options{
		Region:         c.Region,
		Endpoint:       c.Endpoint,
		UsePathStyle:   c.UsePathStyle,
		RequestTimeout: time.Duration(c.RequestTimeoutSeconds) * time.Second,
	}
}

// LoaderConfig builds the secrets loader settings.
func (c *Config) LoaderConfig() secrets.Config {
	return secrets.Config{
		LocalPath: c.Secrets.LocalPath,
		Remote:    storage.Location{Bucket: c.Secrets.Bucket, Key: c.Secrets.Key},
		Options:   c.Storage.Options(),
	}
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)

		// Ensure the working directory exists
		ensureDir(instance.App.WorkingDir)
	})

	return instance
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("APP_REPO_DIR", ".")
	v.SetDefault("APP_WORKING_DIR", "./working_dir")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("STORAGE_BACKEND", string(storage.BackendS3))
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_USE_PATH_STYLE", false)
	v.SetDefault("S3_REQUEST_TIMEOUT_SECONDS", 0)
	v.SetDefault("S3_DEFAULT_BUCKET", "")
	v.SetDefault("SECRETS_LOCAL_PATH", "")
	v.SetDefault("SECRETS_BUCKET", "")
	v.SetDefault("SECRETS_KEY", "secrets.json")
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		App: AppConfig{
			RepoDir:    v.GetString("APP_REPO_DIR"),
			WorkingDir: v.GetString("APP_WORKING_DIR"),
			LogLevel:   v.GetString("LOG_LEVEL"),
			LogFormat:  v.GetString("LOG_FORMAT"),
		},
		Storage: StorageConfig{
			Backend:               v.GetString("STORAGE_BACKEND"),
			Region:                v.GetString("AWS_REGION"),
			Endpoint:              v.GetString("S3_ENDPOINT"),
			UsePathStyle:          v.GetBool("S3_USE_PATH_STYLE"),
			RequestTimeoutSeconds: v.GetInt("S3_REQUEST_TIMEOUT_SECONDS"),
			DefaultBucket:         v.GetString("S3_DEFAULT_BUCKET"),
		},
		Secrets: SecretsConfig{
			LocalPath: v.GetString("SECRETS_LOCAL_PATH"),
			Bucket:    v.GetString("SECRETS_BUCKET"),
			Key:       v.GetString("SECRETS_KEY"),
		},
	}

	if cfg.Secrets.LocalPath == "" {
		cfg.Secrets.LocalPath = secrets.DefaultLocalPath(cfg.App.RepoDir)
	}

	return cfg
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
