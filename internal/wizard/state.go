package wizard

import (
	"github.com/andreagrandi/conformance-wizard/internal/conformance"
)

// State is a snapshot of a wizard session.
type State struct {
	DiscoveryModel         any
	DiscoveryModelProblems []conformance.Problem
	Configuration          conformance.Configuration
	ConfigurationErrors    []error
	WizardStep             Step
	TestCases              []conformance.TestCase
	TestCasesError         []error
	TestCaseResults        map[string]conformance.TestCaseResult
	TestCaseResultsError   []error
}

func newState() State {
	return State{
		Configuration:        conformance.DefaultConfiguration(),
		ConfigurationErrors:  []error{},
		WizardStep:           StepOne,
		TestCases:            []conformance.TestCase{},
		TestCasesError:       []error{},
		TestCaseResults:      map[string]conformance.TestCaseResult{},
		TestCaseResultsError: []error{},
	}
}

// ConfigurationMessages returns the configuration errors as strings.
func (st State) ConfigurationMessages() []string {
	return errorMessages(st.ConfigurationErrors)
}

// ProblemMessages returns the discovery problems as strings.
func (st State) ProblemMessages() []string {
	messages := make([]string, 0, len(st.DiscoveryModelProblems))
	for _, problem := range st.DiscoveryModelProblems {
		messages = append(messages, problem.String())
	}

	return messages
}

func (st State) clone() State {
	return State{
		DiscoveryModel:         cloneJSON(st.DiscoveryModel),
		DiscoveryModelProblems: cloneProblems(st.DiscoveryModelProblems),
		Configuration:          st.Configuration,
		ConfigurationErrors:    cloneErrors(st.ConfigurationErrors),
		WizardStep:             st.WizardStep,
		TestCases:              append([]conformance.TestCase(nil), st.TestCases...),
		TestCasesError:         cloneErrors(st.TestCasesError),
		TestCaseResults:        cloneResults(st.TestCaseResults),
		TestCaseResultsError:   cloneErrors(st.TestCaseResultsError),
	}
}

// cloneJSON deep copies a value produced by encoding/json.
func cloneJSON(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, item := range v {
			copied[key] = cloneJSON(item)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = cloneJSON(item)
		}
		return copied
	default:
		return v
	}
}

func cloneProblems(problems []conformance.Problem) []conformance.Problem {
	if problems == nil {
		return nil
	}

	copied := make([]conformance.Problem, len(problems))
	for i, problem := range problems {
		copied[i] = problem
		if problem.Key != nil {
			key := *problem.Key
			copied[i].Key = &key
		}
	}

	return copied
}

func cloneErrors(errs []error) []error {
	if errs == nil {
		return nil
	}

	return append([]error{}, errs...)
}

func cloneResults(results map[string]conformance.TestCaseResult) map[string]conformance.TestCaseResult {
	copied := make(map[string]conformance.TestCaseResult, len(results))
	for id, result := range results {
		result.Fail = append([]conformance.ResultDetail(nil), result.Fail...)
		copied[id] = result
	}

	return copied
}

func errorMessages(errs []error) []string {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		messages = append(messages, err.Error())
	}

	return messages
}
