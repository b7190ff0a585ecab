package wizard

// Operation names a remote call made by the store.
type Operation string

const (
	OperationValidateDiscovery      Operation = "validate_discovery_config"
	OperationValidateConfiguration  Operation = "validate_configuration"
	OperationComputeTestCases       Operation = "compute_test_cases"
	OperationComputeTestCaseResults Operation = "compute_test_case_results"
)

// Outcome classifies how a remote call ended.
type Outcome string

const (
	// OutcomeSuccess: the suite accepted the request.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure: the suite answered with validation problems.
	OutcomeFailure Outcome = "failure"
	// OutcomeError: the call failed or the suite rejected it outright.
	OutcomeError Outcome = "error"
)

// Observer is notified about step transitions and remote calls. Calls happen
// while the store lock may be held, so implementations must not call back
// into the store.
type Observer interface {
	StepChanged(from Step, to Step)
	RemoteCall(operation Operation, outcome Outcome)
}

type noopObserver struct{}

func (noopObserver) StepChanged(Step, Step)        {}
func (noopObserver) RemoteCall(Operation, Outcome) {}
