// Package credentials provides the read-only secret set consumed by platform
// adapters. Secrets are loaded once at startup, from the process environment
// optionally merged with a .env file; adapters receive the set at
// construction time and never read ambient process state afterwards.
package credentials

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Well-known credential keys.
const (
	LinkedInEmail    = "LINKEDIN_EMAIL"
	LinkedInPassword = "LINKEDIN_PASSWORD"
	TwitterEmail     = "TWITTER_EMAIL"
	TwitterPassword  = "TWITTER_PASSWORD"
	MetaAccessToken  = "META_ACCESS_TOKEN"
)

// Set is an immutable collection of named secrets.
type Set struct {
	values map[string]string
}

// Load builds a Set from the process environment, merged with the optional
// .env file at path. File values take precedence over inherited environment
// values, matching godotenv's overload behavior.
func Load(path string) (*Set, error) {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}

	if path != "" {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading env file %s", path)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	return &Set{values: values}, nil
}

// FromMap builds a Set directly from values. Primarily for tests.
func FromMap(values map[string]string) *Set {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Set{values: copied}
}

// Get returns the named secret, or "" when absent.
func (s *Set) Get(key string) string {
	return s.values[key]
}

// Require returns the named secrets in order, failing if any is absent or
// empty. Adapters call this from their constructors so a missing key is a
// construction-time failure, never a mid-run one.
func (s *Set) Require(keys ...string) ([]string, error) {
	out := make([]string, 0, len(keys))
	var missing []string
	for _, k := range keys {
		v := s.values[k]
		if v == "" {
			missing = append(missing, k)
			continue
		}
		out = append(out, v)
	}
	if len(missing) > 0 {
		return nil, errors.Newf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
