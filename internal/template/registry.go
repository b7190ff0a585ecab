package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bundledtemplates "github.com/andreagrandi/conformance-wizard/templates"
	"gopkg.in/yaml.v3"
)

// LoadTemplates loads discovery templates from one or more directories.
//
// If no paths are provided, the bundled templates are loaded first and then
// these locations in order:
//  1. templates/ relative to the executable
//  2. templates/ relative to the current working directory
//  3. ~/.config/conformance-wizard/templates
//
// When multiple files define the same template name, the last loaded
// definition wins.
func LoadTemplates(paths ...string) (map[string]Template, error) {
	loadBundledDefaults := len(paths) == 0

	loadPaths := resolveTemplatePaths(paths...)

	templates := make(map[string]Template)
	if loadBundledDefaults {
		if err := loadEmbeddedTemplates(templates); err != nil {
			return nil, err
		}
	}

	for _, rawPath := range loadPaths {
		path, err := expandHome(rawPath)
		if err != nil {
			return nil, fmt.Errorf("expand templates path %q: %w", rawPath, err)
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("read templates directory %q: %w", path, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isYAML(entry.Name()) {
				continue
			}

			filePath := filepath.Join(path, entry.Name())
			tmpl, err := loadTemplateFile(filePath)
			if err != nil {
				return nil, err
			}

			templates[tmpl.Name] = tmpl
		}
	}

	return templates, nil
}

// ValidateTemplate requires a name and a model that parses as a JSON object.
func ValidateTemplate(t Template) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return errors.New("template name is required")
	}

	if strings.TrimSpace(t.Model) == "" {
		return fmt.Errorf("template %q model is required", name)
	}

	var model map[string]any
	if err := json.Unmarshal([]byte(t.Model), &model); err != nil {
		return fmt.Errorf("template %q model is not a JSON object: %w", name, err)
	}

	return nil
}

func resolveTemplatePaths(paths ...string) []string {
	if len(paths) > 0 {
		return paths
	}

	binaryPath := "templates"
	executablePath, err := os.Executable()
	if err == nil {
		binaryPath = filepath.Join(filepath.Dir(executablePath), "templates")
	}

	loadPaths := []string{binaryPath}

	workingDirectory, err := os.Getwd()
	if err == nil {
		loadPaths = append(loadPaths, filepath.Join(workingDirectory, "templates"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return dedupePaths(loadPaths)
	}

	loadPaths = append(loadPaths, filepath.Join(homeDir, ".config", "conformance-wizard", "templates"))

	return dedupePaths(loadPaths)
}

func dedupePaths(paths []string) []string {
	seenPaths := make(map[string]struct{}, len(paths))
	uniquePaths := make([]string, 0, len(paths))

	for _, path := range paths {
		normalizedPath := filepath.Clean(path)
		if _, seen := seenPaths[normalizedPath]; seen {
			continue
		}

		seenPaths[normalizedPath] = struct{}{}
		uniquePaths = append(uniquePaths, path)
	}

	return uniquePaths
}

func loadTemplateFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template file %q: %w", path, err)
	}

	return parseTemplateDefinition(path, data)
}

func loadEmbeddedTemplates(templates map[string]Template) error {
	entries, err := bundledtemplates.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read embedded templates: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		filePath := entry.Name()
		data, err := bundledtemplates.FS.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read embedded template file %q: %w", filePath, err)
		}

		tmpl, err := parseTemplateDefinition("embedded/"+filePath, data)
		if err != nil {
			return err
		}

		templates[tmpl.Name] = tmpl
	}

	return nil
}

func parseTemplateDefinition(path string, data []byte) (Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("parse template file %q: %w", path, err)
	}

	tmpl.Name = strings.TrimSpace(tmpl.Name)
	tmpl.Description = strings.TrimSpace(tmpl.Description)
	tmpl.Model = strings.TrimSpace(tmpl.Model)

	if err := ValidateTemplate(tmpl); err != nil {
		return Template{}, fmt.Errorf("validate template file %q: %w", path, err)
	}

	return tmpl, nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}

	if !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~\\") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[2:]), nil
}
