package credential

import (
	"os"
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

// DefaultEnvPrefix prefixes the environment variable of every field, e.g.
// CONFORMANCE_CLIENT_ID.
const DefaultEnvPrefix = "CONFORMANCE_"

// EnvSource resolves field values from process environment variables.
type EnvSource struct {
	prefix string
}

// NewEnvSource creates a source backed by environment variables.
func NewEnvSource() EnvSource {
	return EnvSource{prefix: DefaultEnvPrefix}
}

// EnvName returns the environment variable consulted for field.
func (s EnvSource) EnvName(field wizard.Field) string {
	return s.prefix + strings.ToUpper(field.Key())
}

// Name returns a stable source name.
func (s EnvSource) Name() string {
	return "environment"
}

// Get returns the environment variable value when present.
func (s EnvSource) Get(field wizard.Field) (string, bool) {
	value, ok := os.LookupEnv(s.EnvName(field))
	if !ok {
		return "", false
	}

	return strings.TrimSpace(value), true
}

// Store is not supported for environment variables.
func (s EnvSource) Store(_ wizard.Field, _ string) error {
	return ErrNotSupported
}
