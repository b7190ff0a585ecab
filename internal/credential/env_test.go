package credential

import (
	"testing"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/stretchr/testify/assert"
)

func TestEnvSourceName(t *testing.T) {
	assert.Equal(t, "environment", NewEnvSource().Name())
}

func TestEnvSourceEnvName(t *testing.T) {
	source := NewEnvSource()

	assert.Equal(t, "CONFORMANCE_CLIENT_ID", source.EnvName(wizard.FieldClientID))
	assert.Equal(t, "CONFORMANCE_X_FAPI_FINANCIAL_ID", source.EnvName(wizard.FieldXFapiFinancialID))
}

func TestEnvSourceGet(t *testing.T) {
	t.Setenv("CONFORMANCE_CLIENT_SECRET", "  secret-value \n")

	value, found := NewEnvSource().Get(wizard.FieldClientSecret)

	assert.True(t, found)
	assert.Equal(t, "secret-value", value)
}

func TestEnvSourceGetMissing(t *testing.T) {
	_, found := NewEnvSource().Get(wizard.FieldTokenEndpoint)

	assert.False(t, found)
}

func TestEnvSourceStoreNotSupported(t *testing.T) {
	err := NewEnvSource().Store(wizard.FieldClientID, "x")

	assert.ErrorIs(t, err, ErrNotSupported)
}
