// Package wizard holds the state of a conformance configuration session and
// the operations that move it through the six wizard steps.
//
// All state lives in a Store created at session start. Readers take
// snapshots with State; writers go through the Store operations, each of
// which commits its mutations under the store lock. Remote calls run with the
// lock released, so two operations may interleave their waits, but a reader
// never observes half of an operation's commit sequence.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/andreagrandi/conformance-wizard/internal/conformance"
	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by operations on a store whose session has ended.
var ErrClosed = errors.New("wizard session closed")

// ErrStepOrder is returned by an operation called before the wizard reached
// the step it moves on from.
var ErrStepOrder = errors.New("wizard step not reached")

// ErrNoBackend is reported when the store was built without a suite
// collaborator.
var ErrNoBackend = errors.New("no conformance suite configured")

// DiscoveryValidator validates a discovery model against the suite.
type DiscoveryValidator interface {
	ValidateDiscoveryConfig(ctx context.Context, model any) (*conformance.DiscoveryValidation, error)
}

// ConformanceAPI is the part of the suite backend the wizard drives after
// discovery has been accepted.
type ConformanceAPI interface {
	ValidateConfiguration(ctx context.Context, cfg conformance.Configuration) error
	ComputeTestCases(ctx context.Context) ([]conformance.TestCase, error)
	ComputeTestCaseResults(ctx context.Context) (map[string]conformance.TestCaseResult, error)
}

// StatusNotifier receives the global error banner updates.
type StatusNotifier interface {
	SetErrors(errs []error)
	ClearErrors()
}

// Store is the state container of one wizard session.
type Store struct {
	id uuid.UUID

	mu     sync.RWMutex
	state  State
	closed bool

	discovery DiscoveryValidator
	api       ConformanceAPI
	status    StatusNotifier
	observer  Observer
	logger    *logrus.Entry
}

// Option customises a Store.
type Option func(*Store)

// WithStatusNotifier routes banner updates to notifier.
func WithStatusNotifier(notifier StatusNotifier) Option {
	return func(s *Store) {
		if notifier != nil {
			s.status = notifier
		}
	}
}

// WithObserver registers an observer for step transitions and remote calls.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		if observer != nil {
			s.observer = observer
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRedirectURL overrides the default OAuth redirect URL of a new session.
func WithRedirectURL(redirectURL string) Option {
	return func(s *Store) {
		if redirectURL != "" {
			s.state.Configuration.RedirectURL = redirectURL
		}
	}
}

// NewStore starts a wizard session backed by the given collaborators. A nil
// collaborator fails every remote call with ErrNoBackend.
func NewStore(discovery DiscoveryValidator, api ConformanceAPI, opts ...Option) *Store {
	if discovery == nil {
		discovery = noBackend{}
	}
	if api == nil {
		api = noBackend{}
	}

	s := &Store{
		id:        uuid.New(),
		state:     newState(),
		discovery: discovery,
		api:       api,
		status:    noopNotifier{},
		observer:  noopObserver{},
		logger:    logging.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.WithField("session", s.id.String())
	s.logger.Debug("wizard session started")

	return s
}

// ID returns the session identifier.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Close ends the session. Every later operation fails with ErrClosed and
// leaves the state untouched.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.logger.Debug("wizard session closed")
}

// State returns a snapshot of the session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// Step returns the current wizard step.
func (s *Store) Step() Step {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.WizardStep
}

// SetDiscoveryModel parses editorText as JSON and stores it as the discovery
// model.
//
// A parse failure is recorded as a single keyless problem, moves the wizard
// back to step one and is returned. Text that parses to the current model is
// a no-op.
func (s *Store) SetDiscoveryModel(editorText string) ([]conformance.Problem, error) {
	var model any
	parseErr := json.Unmarshal([]byte(editorText), &model)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	if parseErr != nil {
		problems := []conformance.Problem{conformance.NewProblem(parseErr.Error())}
		s.state.DiscoveryModelProblems = problems
		s.setStepLocked(StepOne)
		s.logger.WithError(parseErr).Debug("discovery model rejected")

		return cloneProblems(problems), nil
	}

	if cmp.Equal(model, s.state.DiscoveryModel) {
		return nil, nil
	}

	s.state.DiscoveryModel = model
	s.state.DiscoveryModelProblems = nil
	s.setStepLocked(StepTwo)

	return nil, nil
}

// SetDiscoveryModelProblems records problems found by an external validator.
func (s *Store) SetDiscoveryModelProblems(problems []conformance.Problem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.state.DiscoveryModelProblems = cloneProblems(problems)
	s.setStepLocked(StepTwo)

	return nil
}

// DiscoveryResult is the outcome of ValidateDiscoveryConfig.
type DiscoveryResult struct {
	Success  bool
	Problems []conformance.Problem
}

// ValidateDiscoveryConfig sends the current discovery model to the suite.
//
// On success the problems are cleared, the wizard moves to step three and an
// empty token endpoint is seeded from the response. On failure, or when the call
// itself fails, the problems are stored and the wizard stays on step two.
// It never returns an error; a closed session reports a failed result.
func (s *Store) ValidateDiscoveryConfig(ctx context.Context) DiscoveryResult {
	s.mu.RLock()
	closed := s.closed
	model := cloneJSON(s.state.DiscoveryModel)
	s.mu.RUnlock()

	if closed {
		return DiscoveryResult{Problems: []conformance.Problem{conformance.NewProblem(ErrClosed.Error())}}
	}

	validation, err := s.discovery.ValidateDiscoveryConfig(ctx, model)
	if err == nil && validation == nil {
		err = errors.New("discovery validation returned no result")
	}

	if err != nil {
		s.observer.RemoteCall(OperationValidateDiscovery, OutcomeError)
		s.logger.WithError(err).Warn("discovery validation failed")

		return s.failDiscovery([]conformance.Problem{conformance.NewProblem(err.Error())})
	}

	if !validation.Success {
		s.observer.RemoteCall(OperationValidateDiscovery, OutcomeFailure)
		s.logger.WithField("problems", len(validation.Problems)).Info("discovery model has problems")

		return s.failDiscovery(validation.Problems)
	}

	s.observer.RemoteCall(OperationValidateDiscovery, OutcomeSuccess)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return DiscoveryResult{Problems: []conformance.Problem{conformance.NewProblem(ErrClosed.Error())}}
	}
	s.state.DiscoveryModelProblems = nil
	if s.state.Configuration.TokenEndpoint == "" {
		if endpoint, ok := validation.Response.FirstTokenEndpoint(); ok {
			s.state.Configuration.TokenEndpoint = endpoint
		}
	}
	s.setStepLocked(StepThree)
	s.mu.Unlock()

	s.status.ClearErrors()

	return DiscoveryResult{Success: true}
}

func (s *Store) failDiscovery(problems []conformance.Problem) DiscoveryResult {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return DiscoveryResult{Problems: []conformance.Problem{conformance.NewProblem(ErrClosed.Error())}}
	}
	s.state.DiscoveryModelProblems = cloneProblems(problems)
	s.setStepLocked(StepTwo)
	s.mu.Unlock()

	banner := make([]error, 0, len(problems))
	for _, problem := range problems {
		banner = append(banner, errors.New(problem.Error))
	}
	s.status.SetErrors(banner)

	return DiscoveryResult{Problems: cloneProblems(problems)}
}

// SetField stores value in field. Storing the current value is a no-op; a
// change made past step three moves the wizard back to step three, since the
// configuration must be validated again. Earlier steps are kept. It reports
// whether the value changed.
func (s *Store) SetField(field Field, value string) (bool, error) {
	def, ok := fieldDefinitions[field]
	if !ok {
		return false, fmt.Errorf("set field: unknown configuration field %d", int(field))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	if def.get(s.state.Configuration) == value {
		return false, nil
	}

	def.set(&s.state.Configuration, value)
	if s.state.WizardStep > StepThree {
		s.setStepLocked(StepThree)
	}
	s.logger.WithField("field", def.key).Debug("configuration field changed")

	return true, nil
}

// SetConfigurationSigningPrivate stores the signing private key.
func (s *Store) SetConfigurationSigningPrivate(value string) error {
	_, err := s.SetField(FieldSigningPrivate, value)
	return err
}

// SetConfigurationSigningPublic stores the signing public certificate.
func (s *Store) SetConfigurationSigningPublic(value string) error {
	_, err := s.SetField(FieldSigningPublic, value)
	return err
}

// SetConfigurationTransportPrivate stores the transport private key.
func (s *Store) SetConfigurationTransportPrivate(value string) error {
	_, err := s.SetField(FieldTransportPrivate, value)
	return err
}

// SetConfigurationTransportPublic stores the transport public certificate.
func (s *Store) SetConfigurationTransportPublic(value string) error {
	_, err := s.SetField(FieldTransportPublic, value)
	return err
}

// SetConfigurationClientID stores the OAuth client ID.
func (s *Store) SetConfigurationClientID(value string) error {
	_, err := s.SetField(FieldClientID, value)
	return err
}

// SetConfigurationClientSecret stores the OAuth client secret.
func (s *Store) SetConfigurationClientSecret(value string) error {
	_, err := s.SetField(FieldClientSecret, value)
	return err
}

// SetConfigurationTokenEndpoint stores the OAuth token endpoint.
func (s *Store) SetConfigurationTokenEndpoint(value string) error {
	_, err := s.SetField(FieldTokenEndpoint, value)
	return err
}

// SetConfigurationXFapiFinancialID stores the x-fapi-financial-id header value.
func (s *Store) SetConfigurationXFapiFinancialID(value string) error {
	_, err := s.SetField(FieldXFapiFinancialID, value)
	return err
}

// SetConfigurationRedirectURL stores the OAuth redirect URL.
func (s *Store) SetConfigurationRedirectURL(value string) error {
	_, err := s.SetField(FieldRedirectURL, value)
	return err
}

// ValidateConfiguration checks the configuration locally and then with the
// suite. It reports whether the configuration was accepted.
//
// Previous configuration errors are always cleared first. Empty required
// fields are reported in a fixed order and stop validation before the suite
// is called. A rejection by the suite is stored verbatim as the only error
// and moves the wizard back to step three. Before step three nothing is
// checked and the state is left untouched.
func (s *Store) ValidateConfiguration(ctx context.Context) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	if err := s.requireStepLocked(OperationValidateConfiguration, StepThree); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Warn("configuration validation skipped")

		return false
	}

	s.state.ConfigurationErrors = []error{}
	for _, field := range RequiredFields() {
		if field.Value(s.state.Configuration) == "" {
			s.state.ConfigurationErrors = append(s.state.ConfigurationErrors, errors.New(field.EmptyMessage()))
		}
	}

	localErrors := cloneErrors(s.state.ConfigurationErrors)
	cfg := s.state.Configuration
	s.mu.Unlock()

	if len(localErrors) > 0 {
		s.logger.WithField("errors", len(localErrors)).Info("configuration incomplete")
		s.status.SetErrors(localErrors)

		return false
	}

	// The response body is irrelevant: not failing means valid.
	if err := s.api.ValidateConfiguration(ctx, cfg); err != nil {
		s.observer.RemoteCall(OperationValidateConfiguration, OutcomeError)
		s.logger.WithError(err).Warn("configuration rejected")

		s.mu.Lock()
		if !s.closed && s.requireStepLocked(OperationValidateConfiguration, StepThree) == nil {
			s.state.ConfigurationErrors = []error{err}
			s.setStepLocked(StepThree)
		}
		s.mu.Unlock()

		s.status.SetErrors([]error{err})

		return false
	}

	s.observer.RemoteCall(OperationValidateConfiguration, OutcomeSuccess)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if err := s.requireStepLocked(OperationValidateConfiguration, StepThree); err != nil {
		s.mu.Unlock()
		s.logger.WithError(err).Warn("configuration accepted after the wizard moved back")

		return false
	}
	s.setStepLocked(StepFour)
	s.mu.Unlock()

	s.status.ClearErrors()

	return true
}

// SetConfigurationErrors replaces the configuration errors, for example with
// file selection failures.
func (s *Store) SetConfigurationErrors(errs []error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.state.ConfigurationErrors = cloneErrors(errs)

	return nil
}

// ComputeTestCases asks the suite for the test cases. On success the wizard
// moves to step five; on failure the error is recorded, the list is emptied,
// the wizard stays on step four and the error is returned. Called before
// step four it returns ErrStepOrder without contacting the suite.
func (s *Store) ComputeTestCases(ctx context.Context) error {
	if err := s.checkStep(OperationComputeTestCases, StepFour); err != nil {
		return err
	}

	testCases, err := s.api.ComputeTestCases(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if stepErr := s.requireStepLocked(OperationComputeTestCases, StepFour); stepErr != nil {
		return stepErr
	}

	if err != nil {
		s.observer.RemoteCall(OperationComputeTestCases, OutcomeError)
		s.logger.WithError(err).Warn("computing test cases failed")

		s.state.TestCases = []conformance.TestCase{}
		s.state.TestCasesError = []error{err}
		s.setStepLocked(StepFour)

		return err
	}

	s.observer.RemoteCall(OperationComputeTestCases, OutcomeSuccess)

	if testCases == nil {
		testCases = []conformance.TestCase{}
	}
	s.state.TestCases = append([]conformance.TestCase(nil), testCases...)
	s.state.TestCasesError = []error{}
	s.setStepLocked(StepFive)

	return nil
}

// ComputeTestCaseResults runs the test cases. On success the wizard moves to
// step six; on failure the error is recorded, the results are emptied, the
// wizard stays on step five and the error is returned. Called before step
// five it returns ErrStepOrder without contacting the suite.
func (s *Store) ComputeTestCaseResults(ctx context.Context) error {
	if err := s.checkStep(OperationComputeTestCaseResults, StepFive); err != nil {
		return err
	}

	results, err := s.api.ComputeTestCaseResults(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if stepErr := s.requireStepLocked(OperationComputeTestCaseResults, StepFive); stepErr != nil {
		return stepErr
	}

	if err != nil {
		s.observer.RemoteCall(OperationComputeTestCaseResults, OutcomeError)
		s.logger.WithError(err).Warn("running test cases failed")

		s.state.TestCaseResults = map[string]conformance.TestCaseResult{}
		s.state.TestCaseResultsError = []error{err}
		s.setStepLocked(StepFive)

		return err
	}

	s.observer.RemoteCall(OperationComputeTestCaseResults, OutcomeSuccess)

	s.state.TestCaseResults = cloneResults(results)
	s.state.TestCaseResultsError = []error{}
	s.setStepLocked(StepSix)

	return nil
}

func (s *Store) checkStep(operation Operation, required Step) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	return s.requireStepLocked(operation, required)
}

// requireStepLocked must be called with s.mu held.
func (s *Store) requireStepLocked(operation Operation, required Step) error {
	if s.state.WizardStep < required {
		return fmt.Errorf("%s on %s: %w (needs %s)", operation, s.state.WizardStep, ErrStepOrder, required)
	}

	return nil
}

// setStepLocked must be called with s.mu held.
func (s *Store) setStepLocked(step Step) {
	from := s.state.WizardStep
	s.state.WizardStep = step

	if from == step {
		return
	}

	s.logger.WithFields(logrus.Fields{
		"from": from.String(),
		"to":   step.String(),
	}).Debug("wizard step changed")
	s.observer.StepChanged(from, step)
}

type noBackend struct{}

func (noBackend) ValidateDiscoveryConfig(context.Context, any) (*conformance.DiscoveryValidation, error) {
	return nil, ErrNoBackend
}

func (noBackend) ValidateConfiguration(context.Context, conformance.Configuration) error {
	return ErrNoBackend
}

func (noBackend) ComputeTestCases(context.Context) ([]conformance.TestCase, error) {
	return nil, ErrNoBackend
}

func (noBackend) ComputeTestCaseResults(context.Context) (map[string]conformance.TestCaseResult, error) {
	return nil, ErrNoBackend
}

type noopNotifier struct{}

func (noopNotifier) SetErrors([]error) {}
func (noopNotifier) ClearErrors()      {}
