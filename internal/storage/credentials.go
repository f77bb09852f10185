package storage

import "github.com/andresuchdata/transcribe-helpers/internal/domain"

// Credentials holds the static key pair used to sign requests.
// An empty field is absent.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Complete reports whether both halves of the key pair are set.
func (c Credentials) Complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// MergeCredentials fills the fields missing from partial with the matching
// entries of secrets. Fields already set in partial are never replaced.
func MergeCredentials(partial Credentials, secrets domain.Secrets) Credentials {
	merged := partial
	if merged.AccessKeyID == "" {
		merged.AccessKeyID = secrets.Get(domain.SecretAWSAccessKeyID)
	}
	if merged.SecretAccessKey == "" {
		merged.SecretAccessKey = secrets.Get(domain.SecretAWSSecretAccessKey)
	}
	return merged
}

// mergeOptions returns a copy of opts with credentials merged from secrets.
func mergeOptions(opts Options, secrets domain.Secrets) Options {
	opts.Credentials = MergeCredentials(opts.Credentials, secrets)
	return opts
}
