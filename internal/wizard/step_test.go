package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsAreOrdered(t *testing.T) {
	steps := Steps()

	require.Len(t, steps, 6)
	for i, step := range steps {
		assert.True(t, step.Valid())
		assert.Equal(t, i+1, step.Number())
	}
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "STEP_ONE", StepOne.String())
	assert.Equal(t, "STEP_SIX", StepSix.String())
	assert.Equal(t, "Step(0)", Step(0).String())
	assert.False(t, Step(0).Valid())
	assert.False(t, Step(7).Valid())
	assert.Equal(t, "Unknown", Step(7).Title())
}

func TestParseStep(t *testing.T) {
	for _, step := range Steps() {
		parsed, err := ParseStep(step.String())
		require.NoError(t, err)
		assert.Equal(t, step, parsed)
	}

	_, err := ParseStep("STEP_SEVEN")
	assert.Error(t, err)
}
