package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.json"
	configDirName  = "conformance-wizard"

	// EnvServerURL overrides the server_url setting.
	EnvServerURL = "CONFORMANCE_SERVER_URL"
	// EnvLogLevel overrides the log_level setting.
	EnvLogLevel = "CONFORMANCE_LOG_LEVEL"
)

// Format is the on-disk encoding of a config file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FeatureRegistry defines all known feature flags and their defaults.
var FeatureRegistry = map[string]FeatureDefinition{
	"styled": {
		Name:        "styled",
		Description: "Coloured step breadcrumb and result tables",
		Default:     true,
	},
	"metrics": {
		Name:        "metrics",
		Description: "Serve Prometheus wizard metrics on metrics_addr",
		Default:     false,
	},
}

// FeatureDefinition describes a feature flag.
type FeatureDefinition struct {
	Name        string
	Description string
	Default     bool
}

// Settings are the resolved wizard settings.
type Settings struct {
	ServerURL          string
	RequestTimeout     time.Duration
	RedirectURL        string
	LogLevel           string
	LogFormat          string
	MetricsAddr        string
	InsecureSkipVerify bool
}

// Config holds conformance-wizard local settings.
type Config struct {
	path     string
	format   Format
	raw      map[string]any
	features map[string]bool
}

var lookupEnv = os.LookupEnv

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads the config from the given path.
//
// If path is empty, it defaults to ~/.config/conformance-wizard/config.json.
// The format follows the extension: .json (comments allowed), .yaml, .yml
// or .toml. If the file does not exist, a Config with default values is
// returned.
func LoadFrom(path string) (*Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = defaultConfigPath()
	}

	format, err := FormatOf(resolved)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		path:     resolved,
		format:   format,
		raw:      make(map[string]any),
		features: make(map[string]bool),
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("read config file %q: %w", resolved, err)
	}

	if err := decode(format, data, &cfg.raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", resolved, err)
	}

	if cfg.raw == nil {
		cfg.raw = make(map[string]any)
	}

	featuresRaw, ok := cfg.raw["features"]
	if ok {
		featMap, ok := featuresRaw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parse features in config file %q: expected a table, got %T", resolved, featuresRaw)
		}

		for k, v := range featMap {
			enabled, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("parse features in config file %q: feature %q is not a boolean", resolved, k)
			}

			cfg.features[k] = enabled
		}
	}

	if _, err := cfg.Settings(); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", resolved, err)
	}

	return cfg, nil
}

// FormatOf returns the config format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file %q: expected .json, .yaml, .yml or .toml", path)
	}
}

// Path returns the config file location.
func (c *Config) Path() string {
	if c == nil {
		return ""
	}

	return c.path
}

// Settings resolves the wizard settings. Environment overrides win over the
// file, and the file wins over defaults.
func (c *Config) Settings() (Settings, error) {
	settings := Settings{
		LogLevel:  "warn",
		LogFormat: "text",
	}

	if c == nil {
		applyEnv(&settings)
		return settings, nil
	}

	var err error
	if settings.ServerURL, err = c.stringValue("server_url", settings.ServerURL); err != nil {
		return Settings{}, err
	}
	if settings.RedirectURL, err = c.stringValue("redirect_url", settings.RedirectURL); err != nil {
		return Settings{}, err
	}
	if settings.LogLevel, err = c.stringValue("log_level", settings.LogLevel); err != nil {
		return Settings{}, err
	}
	if settings.LogFormat, err = c.stringValue("log_format", settings.LogFormat); err != nil {
		return Settings{}, err
	}
	if settings.MetricsAddr, err = c.stringValue("metrics_addr", settings.MetricsAddr); err != nil {
		return Settings{}, err
	}

	if raw, ok := c.raw["insecure_skip_verify"]; ok {
		insecure, ok := raw.(bool)
		if !ok {
			return Settings{}, fmt.Errorf("setting insecure_skip_verify: expected a boolean, got %T", raw)
		}
		settings.InsecureSkipVerify = insecure
	}

	if raw, ok := c.raw["request_timeout"]; ok {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("setting request_timeout: %w", err)
		}
		settings.RequestTimeout = timeout
	}

	applyEnv(&settings)

	return settings, nil
}

// IsFeatureEnabled returns whether a feature flag is enabled.
//
// If the feature has not been explicitly set, the registry default is used.
// Unknown feature names always return false.
func (c *Config) IsFeatureEnabled(name string) bool {
	trimmed := strings.TrimSpace(name)

	if c != nil {
		if val, ok := c.features[trimmed]; ok {
			return val
		}
	}

	if def, ok := FeatureRegistry[trimmed]; ok {
		return def.Default
	}

	return false
}

// SetFeature sets a feature flag value and persists the config.
func (c *Config) SetFeature(name string, enabled bool) error {
	if c == nil {
		return errors.New("config is nil")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("feature name is required")
	}

	if _, ok := FeatureRegistry[trimmed]; !ok {
		return fmt.Errorf("unknown feature %q", trimmed)
	}

	c.features[trimmed] = enabled

	return c.save()
}

// Features returns a sorted list of all known features with their status.
func (c *Config) Features() []FeatureStatus {
	result := make([]FeatureStatus, 0, len(FeatureRegistry))

	for _, def := range FeatureRegistry {
		status := FeatureStatus{
			Name:        def.Name,
			Description: def.Description,
			Enabled:     c.IsFeatureEnabled(def.Name),
		}
		if c != nil {
			_, status.Configured = c.features[def.Name]
		}

		result = append(result, status)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// FeatureStatus describes the current state of a feature flag.
type FeatureStatus struct {
	Name        string
	Description string
	Enabled     bool
	// Configured is false when the value is the registry default.
	Configured bool
}

func (c *Config) stringValue(key string, fallback string) (string, error) {
	raw, ok := c.raw[key]
	if !ok {
		return fallback, nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("setting %s: expected a string, got %T", key, raw)
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}

	return trimmed, nil
}

func (c *Config) save() error {
	configDir := filepath.Dir(c.path)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config directory %q: %w", configDir, err)
	}

	features := make(map[string]any, len(c.features))
	for name, enabled := range c.features {
		features[name] = enabled
	}
	c.raw["features"] = features

	data, err := encode(c.format, c.raw)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write config file %q: %w", c.path, err)
	}

	return nil
}

func decode(format Format, data []byte, out *map[string]any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, out)
	case FormatTOML:
		return toml.Unmarshal(data, out)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), out)
	}
}

func encode(format Format, raw map[string]any) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(raw)
	case FormatTOML:
		return toml.Marshal(raw)
	default:
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, err
		}

		return append(data, '\n'), nil
	}
}

func parseTimeout(raw any) (time.Duration, error) {
	var timeout time.Duration

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0, err
		}
		timeout = parsed
	case int:
		timeout = time.Duration(v) * time.Second
	case int64:
		timeout = time.Duration(v) * time.Second
	case float64:
		timeout = time.Duration(v * float64(time.Second))
	default:
		return 0, fmt.Errorf("expected a duration, got %T", raw)
	}

	if timeout < 0 {
		return 0, errors.New("must not be negative")
	}

	return timeout, nil
}

func applyEnv(settings *Settings) {
	if value, ok := lookupEnv(EnvServerURL); ok && strings.TrimSpace(value) != "" {
		settings.ServerURL = strings.TrimSpace(value)
	}

	if value, ok := lookupEnv(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		settings.LogLevel = strings.TrimSpace(value)
	}
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", configDirName, configFileName)
	}

	return filepath.Join(homeDir, ".config", configDirName, configFileName)
}
