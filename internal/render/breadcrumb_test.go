package render

import (
	"testing"

	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBreadcrumb_Empty(t *testing.T) {
	theme := NewTheme()
	assert.Equal(t, "", RenderBreadcrumb(theme, nil))
	assert.Equal(t, "", RenderBreadcrumb(theme, []BreadcrumbStep{}))
}

func TestRenderBreadcrumb_ActiveStep(t *testing.T) {
	result := RenderBreadcrumb(NewTheme(), []BreadcrumbStep{
		{Label: "Discovery", Active: true},
	})

	assert.Contains(t, result, "Discovery")
	assert.NotContains(t, result, "✓")
}

func TestRenderBreadcrumb_MixedStates(t *testing.T) {
	result := RenderBreadcrumb(PlainTheme(), []BreadcrumbStep{
		{Label: "Discovery", Completed: true},
		{Label: "Validate discovery", Active: true},
		{Label: "Configuration"},
	})

	assert.Equal(t, "Discovery ✓ › Validate discovery › Configuration", result)
}

func TestStepBreadcrumb(t *testing.T) {
	steps := StepBreadcrumb(wizard.StepThree)
	require.Len(t, steps, 6)

	assert.True(t, steps[0].Completed)
	assert.True(t, steps[1].Completed)
	assert.True(t, steps[2].Active)
	assert.False(t, steps[2].Completed)
	assert.False(t, steps[3].Active)
	assert.False(t, steps[5].Completed)
	assert.Equal(t, "Configuration", steps[2].Label)
}

func TestStepBreadcrumb_FirstStepHasNothingCompleted(t *testing.T) {
	result := RenderBreadcrumb(PlainTheme(), StepBreadcrumb(wizard.StepOne))

	assert.NotContains(t, result, "✓")
	assert.Contains(t, result, "Results")
}
