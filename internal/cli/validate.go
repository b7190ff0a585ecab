package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/filefield"
	"github.com/andreagrandi/conformance-wizard/internal/render"
	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	discoveryPath string
	templateName  string
	run           bool
	files         map[wizard.Field]*string
	values        map[wizard.Field]*string
}

var validateOpts = newValidateOptions()

func newValidateOptions() *validateOptions {
	opts := &validateOptions{
		files:  make(map[wizard.Field]*string, len(wizard.CertificateFields)),
		values: make(map[wizard.Field]*string),
	}

	for _, field := range wizard.CertificateFields {
		opts.files[field] = new(string)
	}

	for _, field := range credentialFields() {
		opts.values[field] = new(string)
	}

	return opts
}

func (o *validateOptions) reset() {
	o.discoveryPath = ""
	o.templateName = ""
	o.run = false

	for _, value := range o.files {
		*value = ""
	}

	for _, value := range o.values {
		*value = ""
	}
}

func init() {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the wizard steps non-interactively",
		Long: `Validate a discovery model and configuration against the conformance suite
without prompting, then compute the test cases.

OAuth client values not given as flags are read from CONFORMANCE_* environment
variables or the credential file.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, validateOpts)
		},
	}

	flags := validateCmd.Flags()
	flags.StringVar(&validateOpts.discoveryPath, "discovery", "", "discovery model JSON file")
	flags.StringVar(&validateOpts.templateName, "template", "", "bundled discovery template name")
	flags.BoolVar(&validateOpts.run, "run", false, "run the test cases and report results")

	for _, field := range wizard.CertificateFields {
		flags.StringVar(validateOpts.files[field], flagName(field), "", field.Label()+" file")
	}

	for _, field := range credentialFields() {
		flags.StringVar(validateOpts.values[field], flagName(field), "", field.Label())
	}

	rootCmd.AddCommand(validateCmd)
}

func flagName(field wizard.Field) string {
	return strings.ReplaceAll(field.Key(), "_", "-")
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	editorText, err := readDiscoveryInput(opts)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	output := cmd.OutOrStdout()
	ctx := commandContext(cmd)
	store := sess.store

	problems, err := store.SetDiscoveryModel(editorText)
	if err != nil {
		return err
	}

	if len(problems) > 0 {
		fmt.Fprintln(output, render.RenderProblems(sess.theme, problems))
		return errors.New("discovery model is not valid JSON")
	}

	if result := store.ValidateDiscoveryConfig(ctx); !result.Success {
		return fmt.Errorf("discovery model rejected with %d problem(s)", len(result.Problems))
	}

	fmt.Fprintln(output, "Discovery model accepted.")

	if err := sess.prefillCredentials(output, newCredentialFile()); err != nil {
		return err
	}

	for _, field := range wizard.CertificateFields {
		path := strings.TrimSpace(*opts.files[field])
		if path == "" {
			continue
		}

		fileField, err := filefield.New(field, store)
		if err != nil {
			return err
		}

		if err := fileField.Select(expandHome(path)); err != nil {
			return err
		}
	}

	for _, field := range credentialFields() {
		value := strings.TrimSpace(*opts.values[field])
		if value == "" {
			continue
		}

		if _, err := store.SetField(field, value); err != nil {
			return err
		}
	}

	if !store.ValidateConfiguration(ctx) {
		return fmt.Errorf("configuration rejected with %d error(s)", len(store.State().ConfigurationErrors))
	}

	fmt.Fprintln(output, "Configuration accepted.")

	if err := store.ComputeTestCases(ctx); err != nil {
		return fmt.Errorf("compute test cases: %w", err)
	}

	fmt.Fprintln(output, render.TestCasesTable(sess.theme, store.State().TestCases))

	if !opts.run {
		sess.printBreadcrumb(output, store.Step())
		return nil
	}

	if err := store.ComputeTestCaseResults(ctx); err != nil {
		return fmt.Errorf("run test cases: %w", err)
	}

	results := store.State().TestCaseResults
	fmt.Fprintln(output, render.ResultsTable(sess.theme, results))
	sess.printBreadcrumb(output, store.Step())

	failed := 0
	for _, result := range results {
		if !result.Pass {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d test cases failed", failed, len(results))
	}

	return nil
}

func readDiscoveryInput(opts *validateOptions) (string, error) {
	discoveryPath := strings.TrimSpace(opts.discoveryPath)
	templateName := strings.TrimSpace(opts.templateName)

	switch {
	case discoveryPath != "" && templateName != "":
		return "", errors.New("use either --discovery or --template, not both")
	case discoveryPath != "":
		data, err := os.ReadFile(expandHome(discoveryPath))
		if err != nil {
			return "", fmt.Errorf("read discovery model: %w", err)
		}

		return string(data), nil
	case templateName != "":
		templates, err := loadTemplates()
		if err != nil {
			return "", fmt.Errorf("load templates: %w", err)
		}

		tmpl, ok := templates[templateName]
		if !ok {
			return "", fmt.Errorf("unknown template %q", templateName)
		}

		return tmpl.Model, nil
	default:
		return "", errors.New("a discovery model is required: use --discovery or --template")
	}
}
