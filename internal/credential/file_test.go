package credential

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceName(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "credentials"))

	if source.Name() != "file" {
		t.Fatalf("expected source name file, got %q", source.Name())
	}
}

func TestFileSourceUsesDefaultPathWhenEmpty(t *testing.T) {
	source := NewFileSource("  ")
	if source.Path() == "" {
		t.Fatal("expected default path to be set")
	}

	if !strings.HasSuffix(source.Path(), filepath.Join(".config", "conformance-wizard", "credentials")) {
		t.Fatalf("unexpected default path: %q", source.Path())
	}
}

func TestFileSourceGetReturnsFalseWhenFileMissing(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "credentials"))

	value, found := source.Get(wizard.FieldClientID)
	if found {
		t.Fatal("expected missing credentials file to return not found")
	}

	if value != "" {
		t.Fatalf("expected empty value, got %q", value)
	}
}

func TestFileSourceStoreAndGetRoundTrip(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "nested", "credentials")
	source := NewFileSource(credentialsPath)

	require.NoError(t, source.Store(wizard.FieldClientID, "client-value"))
	require.NoError(t, source.Store(wizard.FieldClientID, "updated-value"))

	value, found := source.Get(wizard.FieldClientID)
	require.True(t, found)
	assert.Equal(t, "updated-value", value)

	info, err := os.Stat(credentialsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileSourceAppendsNewKeysInOrder(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "credentials")
	source := NewFileSource(credentialsPath)

	require.NoError(t, source.Store(wizard.FieldTokenEndpoint, "https://bank/token"))
	require.NoError(t, source.Store(wizard.FieldClientID, "client"))
	require.NoError(t, source.Store(wizard.FieldTokenEndpoint, "https://bank/v2/token"))

	data, err := os.ReadFile(credentialsPath)
	require.NoError(t, err)
	assert.Equal(t, "token_endpoint=https://bank/v2/token\nclient_id=client\n", string(data))
}

func TestFileSourcePreservesCommentsOnRewrite(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "credentials")
	content := "# sandbox client\nclient_id=old\n\nother_tool_key=keep\nclient_id=duplicate\n"
	require.NoError(t, os.WriteFile(credentialsPath, []byte(content), 0o600))

	source := NewFileSource(credentialsPath)
	require.NoError(t, source.Store(wizard.FieldClientID, "new"))

	data, err := os.ReadFile(credentialsPath)
	require.NoError(t, err)
	assert.Equal(t, "# sandbox client\nclient_id=new\n\nother_tool_key=keep\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(credentialsPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "expected no temporary files left behind")
}

func TestFileSourceLastDuplicateWins(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(credentialsPath, []byte("client_id=first\nclient_id=second\n"), 0o600))

	value, found := NewFileSource(credentialsPath).Get(wizard.FieldClientID)
	require.True(t, found)
	assert.Equal(t, "second", value)
}

func TestFileSourceIgnoresCommentsAndMalformedLines(t *testing.T) {
	credentialsPath := filepath.Join(t.TempDir(), "credentials")
	content := "# OAuth client\n\nnot-a-pair\nCLIENT_SECRET = s3cret \n"
	require.NoError(t, os.WriteFile(credentialsPath, []byte(content), 0o600))

	value, found := NewFileSource(credentialsPath).Get(wizard.FieldClientSecret)

	require.True(t, found)
	assert.Equal(t, "s3cret", value)
}

func TestFileSourceRefusesKeyMaterial(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "credentials"))

	tests := []struct {
		name  string
		field wizard.Field
		value string
	}{
		{name: "certificate field", field: wizard.FieldSigningPrivate, value: "key"},
		{name: "multi-line value", field: wizard.FieldClientSecret, value: "line1\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := source.Store(tt.field, tt.value)
			assert.ErrorIs(t, err, ErrNotSupported)
		})
	}

	_, err := os.Stat(source.Path())
	assert.True(t, os.IsNotExist(err), "refused stores must not create the file")
}

func TestFileSourceDelete(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "credentials"))

	require.NoError(t, source.Delete(wizard.FieldClientID), "missing file is not an error")

	require.NoError(t, source.Store(wizard.FieldClientID, "client"))
	require.NoError(t, source.Store(wizard.FieldClientSecret, "secret"))

	require.NoError(t, source.Delete(wizard.FieldClientID, wizard.FieldTokenEndpoint))

	_, found := source.Get(wizard.FieldClientID)
	assert.False(t, found)

	value, found := source.Get(wizard.FieldClientSecret)
	assert.True(t, found)
	assert.Equal(t, "secret", value)
}

func TestFileSourceNilReceiver(t *testing.T) {
	var source *FileSource

	_, found := source.Get(wizard.FieldClientID)
	assert.False(t, found)
	assert.Error(t, source.Store(wizard.FieldClientID, "x"))
	assert.Error(t, source.Delete(wizard.FieldClientID))
}
