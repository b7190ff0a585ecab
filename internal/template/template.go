// Package template loads discovery model templates, the starting points
// offered on the first wizard step.
package template

import (
	"sort"
)

// Template is a named discovery model loaded from a YAML file. Model holds
// the discovery JSON text exactly as it is handed to the editor.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"`
}

// Sorted returns templates ordered by name.
func Sorted(templates map[string]Template) []Template {
	sorted := make([]Template, 0, len(templates))
	for _, tmpl := range templates {
		sorted = append(sorted, tmpl)
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
