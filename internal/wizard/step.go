package wizard

import "fmt"

// Step marks how far the user has progressed through the wizard.
type Step int

const (
	// StepOne: discovery model is being edited.
	StepOne Step = iota + 1
	// StepTwo: discovery model parsed, awaiting remote validation.
	StepTwo
	// StepThree: discovery accepted, configuration is being edited.
	StepThree
	// StepFour: configuration accepted, test cases can be computed.
	StepFour
	// StepFive: test cases computed, ready to run.
	StepFive
	// StepSix: test case results available.
	StepSix
)

var stepNames = map[Step]string{
	StepOne:   "STEP_ONE",
	StepTwo:   "STEP_TWO",
	StepThree: "STEP_THREE",
	StepFour:  "STEP_FOUR",
	StepFive:  "STEP_FIVE",
	StepSix:   "STEP_SIX",
}

var stepTitles = map[Step]string{
	StepOne:   "Discovery",
	StepTwo:   "Validate discovery",
	StepThree: "Configuration",
	StepFour:  "Test cases",
	StepFive:  "Run",
	StepSix:   "Results",
}

// Steps returns every step in order.
func Steps() []Step {
	return []Step{StepOne, StepTwo, StepThree, StepFour, StepFive, StepSix}
}

// Valid reports whether s is one of the six known steps.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// Number returns the 1-based position of the step.
func (s Step) Number() int {
	return int(s)
}

// Title returns a short human readable name for the step.
func (s Step) Title() string {
	if title, ok := stepTitles[s]; ok {
		return title
	}

	return "Unknown"
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Step(%d)", int(s))
}

// ParseStep converts a STEP_* name back into a Step.
func ParseStep(name string) (Step, error) {
	for step, stepName := range stepNames {
		if stepName == name {
			return step, nil
		}
	}

	return 0, fmt.Errorf("unknown wizard step %q", name)
}
