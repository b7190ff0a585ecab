package cli

import (
	"fmt"
	"io"

	"github.com/andreagrandi/conformance-wizard/internal/template"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "templates",
		Short: "List available discovery model templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := loadTemplates()
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}

			printTemplatesList(cmd.OutOrStdout(), templates)
			return nil
		},
	})
}

func printTemplatesList(output io.Writer, templates map[string]template.Template) {
	fmt.Fprintln(output, "Discovery templates:")
	fmt.Fprintln(output)

	if len(templates) == 0 {
		fmt.Fprintln(output, "  (none)")
		return
	}

	sorted := template.Sorted(templates)

	maxNameWidth := 0
	for _, tmpl := range sorted {
		if len(tmpl.Name) > maxNameWidth {
			maxNameWidth = len(tmpl.Name)
		}
	}

	for _, tmpl := range sorted {
		if tmpl.Description == "" {
			fmt.Fprintf(output, "  %s\n", tmpl.Name)
			continue
		}

		fmt.Fprintf(output, "  %-*s  %s\n", maxNameWidth, tmpl.Name, tmpl.Description)
	}
}
