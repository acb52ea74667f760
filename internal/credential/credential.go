// Package credential locates the bearer key for the generation API.
//
// Two sources are consulted in priority order: the ambient environment
// variable, then a key file persisted by a one-time setup run. The
// resolved value is read-only afterwards and safe to share across
// calls without synchronization.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar is the ambient credential source checked first.
const EnvVar = "GEMINI_API_KEY"

// ErrMissing is returned when neither source yields a credential.
// Gateway operations must fail fast on it without attempting I/O.
var ErrMissing = errors.New("credential: no API key configured")

// Resolver resolves the API credential from env then key file.
type Resolver struct {
	envVar  string
	keyFile string
}

// NewResolver creates a Resolver. keyFile may be empty, in which case
// only the environment is consulted.
func NewResolver(keyFile string) *Resolver {
	return &Resolver{envVar: EnvVar, keyFile: keyFile}
}

// Resolve returns the credential or ErrMissing. The environment wins
// over the persisted key so deployments can override a stale setup.
func (r *Resolver) Resolve() (string, error) {
	if v := strings.TrimSpace(os.Getenv(r.envVar)); v != "" {
		return v, nil
	}
	if r.keyFile != "" {
		data, err := os.ReadFile(r.keyFile)
		if err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				return v, nil
			}
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("credential: read key file: %w", err)
		}
	}
	return "", ErrMissing
}

// Persist writes a user-supplied key to the key file with owner-only
// permissions. Used by the one-time setup flow.
func (r *Resolver) Persist(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credential: refusing to persist empty key")
	}
	if r.keyFile == "" {
		return errors.New("credential: no key file configured")
	}
	if err := os.MkdirAll(filepath.Dir(r.keyFile), 0o700); err != nil {
		return fmt.Errorf("credential: create key dir: %w", err)
	}
	if err := os.WriteFile(r.keyFile, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("credential: write key file: %w", err)
	}
	return nil
}
