package cli

import (
	"bytes"
	"testing"

	"github.com/andreagrandi/conformance-wizard/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesCommandListsBundledTemplates(t *testing.T) {
	isolateEnvironment(t)

	output, err := executeRootCommand(t, "templates")
	require.NoError(t, err)

	assert.Contains(t, output, "Discovery templates:")
	assert.Contains(t, output, "ob-v3.1-ozone")
	assert.Contains(t, output, "ob-v3.1-accounts-minimal")
}

func TestPrintTemplatesList(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]template.Template
		want      string
	}{
		{
			name:      "empty",
			templates: map[string]template.Template{},
			want:      "Discovery templates:\n\n  (none)\n",
		},
		{
			name: "aligned descriptions",
			templates: map[string]template.Template{
				"short":      {Name: "short", Description: "first"},
				"longer-one": {Name: "longer-one", Description: "second"},
				"bare":       {Name: "bare"},
			},
			want: "Discovery templates:\n\n  bare\n  longer-one  second\n  short       first\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printTemplatesList(&buf, tt.templates)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
