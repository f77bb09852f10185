package domain

import "slices"

// Well-known secret names.
const (
	SecretAWSAccessKeyID     = "aws_access_key_id"
	SecretAWSSecretAccessKey = "aws_secret_access_key"
)

// Secrets maps a secret name to its value. It is read-only once loaded.
type Secrets map[string]string

// Get returns the named secret, or "" when s is nil or the name is absent.
func (s Secrets) Get(name string) string {
	if s == nil {
		return ""
	}
	return s[name]
}

// Names returns the secret names in sorted order without their values.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
