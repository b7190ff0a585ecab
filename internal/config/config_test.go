package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func withoutEnv(t *testing.T) {
	t.Helper()

	original := lookupEnv
	lookupEnv = func(string) (string, bool) { return "", false }
	t.Cleanup(func() { lookupEnv = original })
}

func writeConfig(t *testing.T, name string, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	return configPath
}

func TestLoadFromReturnsDefaultsWhenFileMissing(t *testing.T) {
	withoutEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if cfg.IsFeatureEnabled("metrics") {
		t.Fatal("expected metrics feature to be disabled by default")
	}

	if !cfg.IsFeatureEnabled("styled") {
		t.Fatal("expected styled feature to be enabled by default")
	}

	settings, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, Settings{LogLevel: "warn", LogFormat: "text"}, settings)
}

func TestLoadFromReadsEveryFormat(t *testing.T) {
	withoutEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json with comments",
			file: "config.json",
			content: `{
  // local suite
  "server_url": "https://localhost:8443",
  "request_timeout": "5s",
  "log_level": "debug",
  "insecure_skip_verify": true,
  "features": {"metrics": true},
}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `server_url: https://localhost:8443
request_timeout: 5
log_level: debug
insecure_skip_verify: true
features:
  metrics: true
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `server_url = "https://localhost:8443"
request_timeout = "5s"
log_level = "debug"
insecure_skip_verify = true

[features]
metrics = true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)

			settings, err := cfg.Settings()
			require.NoError(t, err)

			assert.Equal(t, "https://localhost:8443", settings.ServerURL)
			assert.Equal(t, 5*time.Second, settings.RequestTimeout)
			assert.Equal(t, "debug", settings.LogLevel)
			assert.Equal(t, "text", settings.LogFormat)
			assert.True(t, settings.InsecureSkipVerify)
			assert.True(t, cfg.IsFeatureEnabled("metrics"))
		})
	}
}

func TestLoadFromRejectsUnsupportedExtension(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "config.ini"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file")
}

func TestLoadFromReturnsErrorOnInvalidJSON(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "config.json", "{not json}"))
	if err == nil {
		t.Fatal("expected error on invalid JSON")
	}
}

func TestLoadFromReturnsErrorOnInvalidFeatures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not a map", content: `{"features":"not-a-map"}`},
		{name: "not a boolean", content: `{"features":{"metrics":"yes"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, "config.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromReturnsErrorOnInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "server url type", content: `{"server_url": 8443}`},
		{name: "timeout syntax", content: `{"request_timeout": "soon"}`},
		{name: "negative timeout", content: `{"request_timeout": -1}`},
		{name: "insecure type", content: `{"insecure_skip_verify": "yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, "config.json", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSettingsEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvServerURL, " https://suite.example:8443 ")
	t.Setenv(EnvLogLevel, "error")

	cfg, err := LoadFrom(writeConfig(t, "config.json", `{"server_url":"https://file","log_level":"info"}`))
	require.NoError(t, err)

	settings, err := cfg.Settings()
	require.NoError(t, err)

	assert.Equal(t, "https://suite.example:8443", settings.ServerURL)
	assert.Equal(t, "error", settings.LogLevel)
}

func TestSettingsOnNilConfig(t *testing.T) {
	withoutEnv(t)

	var cfg *Config

	settings, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.LogLevel)
	assert.Empty(t, cfg.Path())
}

func TestSetFeatureEnableAndDisable(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if err := cfg.SetFeature("metrics", true); err != nil {
		t.Fatalf("expected enable to succeed: %v", err)
	}

	if !cfg.IsFeatureEnabled("metrics") {
		t.Fatal("expected metrics to be enabled after SetFeature")
	}

	if err := cfg.SetFeature("metrics", false); err != nil {
		t.Fatalf("expected disable to succeed: %v", err)
	}

	if cfg.IsFeatureEnabled("metrics") {
		t.Fatal("expected metrics to be disabled after SetFeature(false)")
	}
}

func TestSetFeaturePersistsInEveryFormat(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", name)
			cfg, err := LoadFrom(configPath)
			require.NoError(t, err)

			require.NoError(t, cfg.SetFeature("styled", false))

			reloaded, err := LoadFrom(configPath)
			require.NoError(t, err)
			assert.False(t, reloaded.IsFeatureEnabled("styled"))
		})
	}
}

func TestSetFeatureRejectsInvalidInput(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	assert.Error(t, cfg.SetFeature("nonexistent", true))
	assert.Error(t, cfg.SetFeature("  ", true))

	var nilConfig *Config
	assert.Error(t, nilConfig.SetFeature("metrics", true))
}

func TestIsFeatureEnabled(t *testing.T) {
	var nilConfig *Config

	assert.True(t, nilConfig.IsFeatureEnabled("styled"), "nil config falls back to registry defaults")
	assert.False(t, nilConfig.IsFeatureEnabled("nonexistent"))
}

func TestFeaturesReturnsSortedList(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	require.NoError(t, cfg.SetFeature("metrics", true))

	features := cfg.Features()
	require.Len(t, features, 2)

	assert.Equal(t, "metrics", features[0].Name)
	assert.True(t, features[0].Enabled)
	assert.True(t, features[0].Configured)
	assert.NotEmpty(t, features[0].Description)
	assert.Equal(t, "styled", features[1].Name)
	assert.True(t, features[1].Enabled)
	assert.False(t, features[1].Configured)
}

func TestSetFeaturePreservesUnknownTopLevelKeys(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		unmarshal func([]byte, any) error
	}{
		{
			name:      "json",
			file:      "config.json",
			content:   `{"custom_setting":"keep-me","features":{"metrics":false}}`,
			unmarshal: json.Unmarshal,
		},
		{
			name:      "yaml",
			file:      "config.yaml",
			content:   "custom_setting: keep-me\n",
			unmarshal: yaml.Unmarshal,
		},
		{
			name:      "toml",
			file:      "config.toml",
			content:   "custom_setting = \"keep-me\"\n",
			unmarshal: toml.Unmarshal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.file, tt.content)

			cfg, err := LoadFrom(configPath)
			require.NoError(t, err)
			require.NoError(t, cfg.SetFeature("metrics", true))

			data, err := os.ReadFile(configPath)
			require.NoError(t, err)

			var parsed map[string]any
			require.NoError(t, tt.unmarshal(data, &parsed))

			assert.Equal(t, "keep-me", parsed["custom_setting"])

			features, ok := parsed["features"].(map[string]any)
			require.True(t, ok, "expected features table, got %T", parsed["features"])
			assert.Equal(t, true, features["metrics"])
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "config.json", want: FormatJSON},
		{path: "CONFIG.YML", want: FormatYAML},
		{path: "config.yaml", want: FormatYAML},
		{path: "config.toml", want: FormatTOML},
		{path: "config", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
