package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andreagrandi/conformance-wizard/internal/credential"
	"github.com/andreagrandi/conformance-wizard/internal/filefield"
	"github.com/andreagrandi/conformance-wizard/internal/render"
	"github.com/andreagrandi/conformance-wizard/internal/template"
	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/spf13/cobra"
)

const (
	optionLoadFile   = "Load from file"
	optionKeepModel  = "Keep current model"
	optionEditModel  = "Edit discovery model"
	optionRetry      = "Retry"
	optionEditConfig = "Edit configuration"
	optionQuit       = "Quit"
)

func runGuidedWizard(cmd *cobra.Command) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	var prompt prompter
	if canUseInteractiveUI(cmd.InOrStdin(), cmd.OutOrStdout()) {
		prompt = surveyPrompter{cmd: cmd}
	} else {
		prompt = newPlainPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	flow := &wizardFlow{
		ctx:         commandContext(cmd),
		output:      cmd.OutOrStdout(),
		prompt:      prompt,
		sess:        sess,
		credentials: newCredentialFile(),
	}

	return flow.run()
}

type wizardFlow struct {
	ctx         context.Context
	output      io.Writer
	prompt      prompter
	sess        *session
	credentials *credential.FileSource
}

func (f *wizardFlow) run() error {
	fmt.Fprintf(f.output, "Conformance suite: %s\n", f.sess.baseURL)

	if err := f.sess.prefillCredentials(f.output, f.credentials); err != nil {
		return err
	}

	current := f.sess.store.Step()
	for {
		fmt.Fprintln(f.output)
		f.sess.printBreadcrumb(f.output, current)
		fmt.Fprintln(f.output)

		next, err := f.runStep(current)
		switch {
		case errors.Is(err, errWizardBack):
			next = previousStep(current)
		case errors.Is(err, errWizardQuit):
			fmt.Fprintln(f.output, "Goodbye.")
			return nil
		case err != nil:
			return err
		case current == wizard.StepSix:
			return nil
		}

		current = next
	}
}

func (f *wizardFlow) runStep(step wizard.Step) (wizard.Step, error) {
	switch step {
	case wizard.StepOne:
		return f.discoveryStep()
	case wizard.StepTwo:
		return f.validateDiscoveryStep()
	case wizard.StepThree:
		return f.configurationStep()
	case wizard.StepFour:
		return f.testCasesStep()
	case wizard.StepFive:
		return f.runTestCasesStep()
	default:
		fmt.Fprintln(f.output, render.ResultsTable(f.sess.theme, f.sess.store.State().TestCaseResults))
		return wizard.StepSix, nil
	}
}

// previousStep skips the steps that only wait on the suite.
func previousStep(step wizard.Step) wizard.Step {
	switch step {
	case wizard.StepFour, wizard.StepFive:
		return wizard.StepThree
	case wizard.StepSix:
		return wizard.StepFive
	default:
		return wizard.StepOne
	}
}

func (f *wizardFlow) discoveryStep() (wizard.Step, error) {
	templates, err := loadTemplates()
	if err != nil {
		return 0, fmt.Errorf("load templates: %w", err)
	}

	options := make([]string, 0, len(templates)+2)
	byLabel := make(map[string]template.Template, len(templates))
	for _, tmpl := range template.Sorted(templates) {
		label := tmpl.Name
		if tmpl.Description != "" {
			label = fmt.Sprintf("%s - %s", tmpl.Name, tmpl.Description)
		}

		options = append(options, label)
		byLabel[label] = tmpl
	}
	options = append(options, optionLoadFile)

	if f.sess.store.Step() > wizard.StepOne {
		options = append(options, optionKeepModel)
	}

	choice, err := f.prompt.Select("Select discovery model", options, "")
	if err != nil {
		return 0, err
	}

	var editorText string
	switch choice {
	case optionKeepModel:
		return f.sess.store.Step(), nil
	case optionLoadFile:
		path, err := f.prompt.Input("Discovery model file", "")
		if err != nil {
			return 0, err
		}

		data, err := os.ReadFile(expandHome(path))
		if err != nil {
			fmt.Fprintln(f.output, render.RenderBanner(f.sess.theme, []error{err}))
			return wizard.StepOne, nil
		}

		editorText = string(data)
	default:
		editorText = byLabel[choice].Model
	}

	problems, err := f.sess.store.SetDiscoveryModel(editorText)
	if err != nil {
		return 0, err
	}

	if len(problems) > 0 {
		fmt.Fprintln(f.output, "Discovery model is not valid JSON:")
		fmt.Fprintln(f.output, render.RenderProblems(f.sess.theme, problems))
	}

	return f.sess.store.Step(), nil
}

func (f *wizardFlow) validateDiscoveryStep() (wizard.Step, error) {
	fmt.Fprintln(f.output, "Validating discovery model...")

	result := f.sess.store.ValidateDiscoveryConfig(f.ctx)
	if result.Success {
		fmt.Fprintln(f.output, f.sess.theme.Completed.Render("Discovery model accepted."))

		if endpoint := f.sess.store.State().Configuration.TokenEndpoint; endpoint != "" {
			fmt.Fprintf(f.output, "Token endpoint: %s\n", endpoint)
		}

		return f.sess.store.Step(), nil
	}

	choice, err := f.prompt.Select("Discovery model rejected", []string{optionEditModel, optionRetry, optionQuit}, optionEditModel)
	if err != nil {
		return 0, err
	}

	switch choice {
	case optionEditModel:
		return wizard.StepOne, nil
	case optionRetry:
		return wizard.StepTwo, nil
	default:
		return 0, errWizardQuit
	}
}

func (f *wizardFlow) configurationStep() (wizard.Step, error) {
	for _, field := range wizard.CertificateFields {
		if err := f.askCertificate(field); err != nil {
			return 0, err
		}
	}

	for _, field := range credentialFields() {
		if err := f.askClientField(field); err != nil {
			return 0, err
		}
	}

	fmt.Fprintln(f.output, "Validating configuration...")

	if !f.sess.store.ValidateConfiguration(f.ctx) {
		choice, err := f.prompt.Select("Configuration rejected", []string{optionEditConfig, optionQuit}, optionEditConfig)
		if err != nil {
			return 0, err
		}

		if choice == optionQuit {
			return 0, errWizardQuit
		}

		return wizard.StepThree, nil
	}

	fmt.Fprintln(f.output, f.sess.theme.Completed.Render("Configuration accepted."))

	if err := f.offerToSaveCredentials(); err != nil {
		return 0, err
	}

	return f.sess.store.Step(), nil
}

func (f *wizardFlow) askCertificate(field wizard.Field) error {
	fileField, err := filefield.New(field, f.sess.store)
	if err != nil {
		return err
	}

	for {
		message := field.Label()
		if description := fileField.Description(); description != "" {
			message = fmt.Sprintf("%s (%s, Enter to keep)", message, description)
		}

		path, err := f.prompt.Input(message, "")
		if err != nil {
			return err
		}

		if path == "" {
			return nil
		}

		if err := fileField.Select(expandHome(path)); err != nil {
			if errors.Is(err, wizard.ErrClosed) {
				return err
			}

			fmt.Fprintln(f.output, render.RenderBanner(f.sess.theme, []error{err}))
			continue
		}

		fmt.Fprintf(f.output, "  %s\n", fileField.Description())
		return nil
	}
}

func (f *wizardFlow) askClientField(field wizard.Field) error {
	current := field.Value(f.sess.store.State().Configuration)

	var (
		value string
		err   error
	)

	if field == wizard.FieldClientSecret {
		message := field.Label()
		if current != "" {
			message += " (Enter to keep)"
		}

		value, err = f.prompt.Secret(message)
		if value == "" {
			value = current
		}
	} else {
		value, err = f.prompt.Input(field.Label(), current)
	}

	if err != nil {
		return err
	}

	_, err = f.sess.store.SetField(field, value)
	return err
}

func (f *wizardFlow) offerToSaveCredentials() error {
	if f.credentials == nil {
		return nil
	}

	cfg := f.sess.store.State().Configuration
	changed := make([]wizard.Field, 0, len(wizard.ClientFields))
	for _, field := range credentialFields() {
		value := field.Value(cfg)
		stored, _ := f.credentials.Get(field)
		if value != "" && value != stored {
			changed = append(changed, field)
		}
	}

	if len(changed) == 0 {
		return nil
	}

	save, err := f.prompt.Confirm(fmt.Sprintf("Save OAuth client settings to %s?", f.credentials.Path()), false)
	if err != nil {
		return err
	}

	if !save {
		return nil
	}

	for _, field := range changed {
		if err := f.credentials.Store(field, field.Value(cfg)); err != nil {
			fmt.Fprintf(f.output, "  Could not save %s: %v\n", field.Label(), err)
		}
	}

	fmt.Fprintln(f.output, "  Saved.")
	return nil
}

func (f *wizardFlow) testCasesStep() (wizard.Step, error) {
	fmt.Fprintln(f.output, "Computing test cases...")

	if err := f.sess.store.ComputeTestCases(f.ctx); err != nil {
		if errors.Is(err, wizard.ErrClosed) {
			return 0, err
		}

		fmt.Fprintln(f.output, render.RenderBanner(f.sess.theme, []error{err}))

		choice, err := f.prompt.Select("Computing test cases failed", []string{optionRetry, optionEditConfig, optionQuit}, optionRetry)
		if err != nil {
			return 0, err
		}

		switch choice {
		case optionRetry:
			return wizard.StepFour, nil
		case optionEditConfig:
			return wizard.StepThree, nil
		default:
			return 0, errWizardQuit
		}
	}

	fmt.Fprintln(f.output, render.TestCasesTable(f.sess.theme, f.sess.store.State().TestCases))

	return f.sess.store.Step(), nil
}

func (f *wizardFlow) runTestCasesStep() (wizard.Step, error) {
	count := len(f.sess.store.State().TestCases)

	run, err := f.prompt.Confirm(fmt.Sprintf("Run %d test cases now?", count), true)
	if err != nil {
		return 0, err
	}

	if !run {
		return 0, errWizardQuit
	}

	fmt.Fprintln(f.output, "Running test cases...")

	if err := f.sess.store.ComputeTestCaseResults(f.ctx); err != nil {
		if errors.Is(err, wizard.ErrClosed) {
			return 0, err
		}

		fmt.Fprintln(f.output, render.RenderBanner(f.sess.theme, []error{err}))

		choice, err := f.prompt.Select("Running test cases failed", []string{optionRetry, optionQuit}, optionRetry)
		if err != nil {
			return 0, err
		}

		if choice == optionRetry {
			return wizard.StepFive, nil
		}

		return 0, errWizardQuit
	}

	return f.sess.store.Step(), nil
}
