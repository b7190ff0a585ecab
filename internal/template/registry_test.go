package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr string
	}{
		{
			name:    "missing name",
			tmpl:    Template{Model: `{}`},
			wantErr: "template name is required",
		},
		{
			name:    "missing model",
			tmpl:    Template{Name: "demo"},
			wantErr: `template "demo" model is required`,
		},
		{
			name:    "model is not JSON",
			tmpl:    Template{Name: "demo", Model: `{"discoveryModel":`},
			wantErr: `template "demo" model is not a JSON object`,
		},
		{
			name:    "model is a JSON array",
			tmpl:    Template{Name: "demo", Model: `[1, 2]`},
			wantErr: `template "demo" model is not a JSON object`,
		},
		{
			name: "valid",
			tmpl: Template{Name: "demo", Model: `{"discoveryModel":{}}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplate(tt.tmpl)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTemplatesLoadsDefinitionsFromMultiplePaths(t *testing.T) {
	bundledDir := t.TempDir()
	userDir := t.TempDir()

	bundled := `name: demo
description: "Bundled demo"
model: '{"discoveryModel":{"name":"bundled"}}'
`

	user := `name: demo
description: "User demo"
model: |
  {"discoveryModel": {"name": "user"}}
`

	other := `name: other
model: '{"discoveryModel":{}}'
`

	writeTestFile(t, filepath.Join(bundledDir, "demo.yaml"), bundled)
	writeTestFile(t, filepath.Join(userDir, "demo.yaml"), user)
	writeTestFile(t, filepath.Join(userDir, "other.yml"), other)
	writeTestFile(t, filepath.Join(userDir, "notes.txt"), "not yaml")

	templates, err := LoadTemplates(bundledDir, userDir)
	if err != nil {
		t.Fatalf("expected templates to load: %v", err)
	}

	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}

	demo := templates["demo"]
	if demo.Description != "User demo" {
		t.Fatalf("expected user definition to override bundled definition, got %q", demo.Description)
	}

	assert.Equal(t, `{"discoveryModel": {"name": "user"}}`, demo.Model)
}

func TestLoadTemplatesReturnsErrorForInvalidDefinition(t *testing.T) {
	templatesDir := t.TempDir()

	writeTestFile(t, filepath.Join(templatesDir, "broken.yaml"), "name: broken\nmodel: 'not json'\n")

	_, err := LoadTemplates(templatesDir)
	if err == nil {
		t.Fatal("expected error for invalid template definition")
	}
}

func TestLoadTemplatesSkipsMissingDirectories(t *testing.T) {
	templatesDir := t.TempDir()

	writeTestFile(t, filepath.Join(templatesDir, "demo.yaml"), "name: demo\nmodel: '{}'\n")

	templates, err := LoadTemplates(filepath.Join(templatesDir, "missing"), templatesDir)
	require.NoError(t, err)

	assert.Len(t, templates, 1)
}

func TestLoadTemplatesLoadsEmbeddedDefaultsWhenPathsAreMissing(t *testing.T) {
	originalWorkingDirectory, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current working directory: %v", err)
	}

	isolatedDirectory := t.TempDir()
	if err := os.Chdir(isolatedDirectory); err != nil {
		t.Fatalf("failed to change working directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWorkingDirectory); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})

	t.Setenv("HOME", isolatedDirectory)
	t.Setenv("USERPROFILE", isolatedDirectory)

	templates, err := LoadTemplates()
	if err != nil {
		t.Fatalf("expected embedded templates to load: %v", err)
	}

	for _, name := range []string{"ob-v3.1-ozone", "ob-v3.1-accounts-minimal"} {
		if _, ok := templates[name]; !ok {
			t.Fatalf("expected template %q to be available from embedded defaults", name)
		}
	}
}

func TestSorted(t *testing.T) {
	sorted := Sorted(map[string]Template{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
	})

	require.Len(t, sorted, 2)
	assert.Equal(t, "alpha", sorted[0].Name)
	assert.Equal(t, "zeta", sorted[1].Name)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	expanded, err := expandHome("~/templates")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "templates"), expanded)

	unchanged, err := expandHome("/etc/templates")
	require.NoError(t, err)
	assert.Equal(t, "/etc/templates", unchanged)
}

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("failed to write test file %q: %v", path, err)
	}
}
