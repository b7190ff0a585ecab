package render

import (
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

// BreadcrumbStep represents one step in the wizard breadcrumb.
type BreadcrumbStep struct {
	Label     string
	Active    bool
	Completed bool
}

// StepBreadcrumb returns the six wizard steps with every step before
// current marked completed.
func StepBreadcrumb(current wizard.Step) []BreadcrumbStep {
	steps := make([]BreadcrumbStep, 0, len(wizard.Steps()))

	for _, step := range wizard.Steps() {
		steps = append(steps, BreadcrumbStep{
			Label:     step.Title(),
			Active:    step == current,
			Completed: step < current,
		})
	}

	return steps
}

// RenderBreadcrumb renders the breadcrumb bar from a list of steps.
//
// Completed steps are green with a check mark. The active step is bold
// cyan. Future steps are dim.
func RenderBreadcrumb(theme Theme, steps []BreadcrumbStep) string {
	var parts []string

	for _, step := range steps {
		switch {
		case step.Completed:
			parts = append(parts, theme.Completed.Render(step.Label+" ✓"))
		case step.Active:
			parts = append(parts, theme.Active.Render(step.Label))
		default:
			parts = append(parts, theme.Dim.Render(step.Label))
		}
	}

	if len(parts) == 0 {
		return ""
	}

	sep := theme.BreadSep.Render(" › ")
	return strings.Join(parts, sep)
}
