// Package secrets loads the project secrets, preferring a local file over
// the copy kept in object storage.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/transcribe-helpers/internal/domain"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/pkg/logger"
)

// ErrMalformedSecrets is returned when the secrets content is not a flat JSON object.
var ErrMalformedSecrets = errors.New("malformed secrets")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultLocalPath returns the secrets file location inside repoDir.
func DefaultLocalPath(repoDir string) string {
	return filepath.Join(repoDir, "proj_secrets", "secrets.json")
}

// ObjectReader reads a whole object from the store.
type ObjectReader interface {
	Get(ctx context.Context, loc storage.Location, opts storage.Options) ([]byte, error)
}

// Config tells the Loader where secrets live.
type Config struct {
	LocalPath string
	Remote    storage.Location
	// Options for the remote read. Credentials are always cleared, the
	// remote copy is fetched with the ambient credential chain.
	Options storage.Options
}

// Loader resolves secrets from the local file or the remote object.
type Loader struct {
	cfg   Config
	store ObjectReader
	log   zerolog.Logger
}

func NewLoader(cfg Config, store ObjectReader) *Loader {
	return &Loader{
		cfg:   cfg,
		store: store,
		log:   logger.Component("secrets"),
	}
}

// Load returns the local secrets file when it exists, the remote object otherwise.
func (l *Loader) Load(ctx context.Context) (domain.Secrets, error) {
	if l.cfg.LocalPath != "" {
		data, err := os.ReadFile(l.cfg.LocalPath)
		switch {
		case err == nil:
			l.log.Debug().Str("path", l.cfg.LocalPath).Msg("loading secrets from local file")
			return Parse(data)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read secrets file %s: %w", l.cfg.LocalPath, err)
		}
	}

	if l.cfg.Remote.Bucket == "" || l.cfg.Remote.Key == "" {
		return nil, fmt.Errorf("%w: no local secrets file and no remote secrets location configured", storage.ErrStorageUnavailable)
	}

	opts := l.cfg.Options
	opts.Credentials = storage.Credentials{}

	l.log.Debug().Stringer("location", l.cfg.Remote).Msg("loading secrets from object storage")
	data, err := l.store.Get(ctx, l.cfg.Remote, opts)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a flat JSON object. Numbers and booleans are kept in their
// JSON text form, null values are dropped, nested values are rejected.
func Parse(data []byte) (domain.Secrets, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSecrets, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedSecrets)
	}

	secrets := make(domain.Secrets, len(raw))
	for name, value := range raw {
		// jsoniter leaves a null member as an empty RawMessage.
		if len(value) == 0 {
			continue
		}
		switch json.Get(value).ValueType() {
		case jsoniter.StringValue:
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSecrets, name, err)
			}
			secrets[name] = s
		case jsoniter.NumberValue, jsoniter.BoolValue:
			secrets[name] = string(value)
		case jsoniter.NilValue:
		default:
			return nil, fmt.Errorf("%w: %q is not a scalar value", ErrMalformedSecrets, name)
		}
	}
	return secrets, nil
}
