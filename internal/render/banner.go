package render

import (
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/conformance"
)

// RenderBanner renders the global error banner, one error per line.
func RenderBanner(theme Theme, errs []error) string {
	lines := make([]string, 0, len(errs))

	for _, err := range errs {
		if err == nil {
			continue
		}

		lines = append(lines, theme.Error.Render("✗ "+err.Error()))
	}

	return strings.Join(lines, "\n")
}

// RenderProblems renders discovery model problems in the order received.
func RenderProblems(theme Theme, problems []conformance.Problem) string {
	lines := make([]string, 0, len(problems))

	for _, problem := range problems {
		lines = append(lines, theme.Warning.Render("- "+problem.String()))
	}

	return strings.Join(lines, "\n")
}
