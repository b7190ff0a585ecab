package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	surveycore "github.com/AlecAivazis/survey/v2/core"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askSurveyOne = func(prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(prompt, response, opts...)
}

func canUseInteractiveUI(input io.Reader, output io.Writer) bool {
	inputFile, inputOK := input.(*os.File)
	outputFile, outputOK := output.(*os.File)
	if !inputOK || !outputOK {
		return false
	}

	return term.IsTerminal(int(inputFile.Fd())) && term.IsTerminal(int(outputFile.Fd()))
}

type surveyPrompter struct {
	cmd *cobra.Command
}

func (p surveyPrompter) Select(message string, options []string, defaultOption string) (string, error) {
	printSurveyHint(p.cmd.OutOrStdout(), "Use Up/Down arrows, Enter to select, Esc to go back.")

	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
		Filter: func(filter string, value string, _ int) bool {
			if strings.TrimSpace(filter) == "" {
				return true
			}

			return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
		},
		FilterMessage: "Filter:",
	}
	if defaultOption != "" {
		prompt.Default = defaultOption
	}

	choice := ""
	if err := askSurveyPrompt(p.cmd, prompt, &choice); err != nil {
		return "", err
	}

	return choice, nil
}

func (p surveyPrompter) Input(message string, defaultValue string) (string, error) {
	value := ""
	prompt := &survey.Input{Message: message, Default: defaultValue}

	if err := askSurveyPrompt(p.cmd, prompt, &value); err != nil {
		return "", err
	}

	return strings.TrimSpace(value), nil
}

func (p surveyPrompter) Secret(message string) (string, error) {
	value := ""
	prompt := &survey.Password{Message: message}

	if err := askSurveyPrompt(p.cmd, prompt, &value); err != nil {
		return "", err
	}

	return strings.TrimSpace(value), nil
}

func (p surveyPrompter) Confirm(message string, defaultYes bool) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{Message: message, Default: defaultYes}

	if err := askSurveyPrompt(p.cmd, prompt, &confirmed); err != nil {
		return false, err
	}

	return confirmed, nil
}

func askSurveyPrompt(cmd *cobra.Command, prompt survey.Prompt, response interface{}) error {
	colorEnabled := surveyColorsEnabled()
	previousDisableColor := surveycore.DisableColor
	surveycore.DisableColor = !colorEnabled
	defer func() {
		surveycore.DisableColor = previousDisableColor
	}()

	questionFormat := "default"
	selectFocusFormat := "default"
	markedFormat := "default"
	if colorEnabled {
		questionFormat = "cyan"
		selectFocusFormat = "cyan"
		markedFormat = "green"
	}

	options := []survey.AskOpt{survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = ">"
		icons.Question.Format = questionFormat
		icons.SelectFocus.Text = ">"
		icons.SelectFocus.Format = selectFocusFormat
		icons.MarkedOption.Text = "[x]"
		icons.MarkedOption.Format = markedFormat
		icons.UnmarkedOption.Text = "[ ]"
		icons.UnmarkedOption.Format = "default"
	})}

	var escInput *escapeBackReader
	inputFile, inputOK := cmd.InOrStdin().(*os.File)
	outputFile, outputOK := cmd.OutOrStdout().(*os.File)
	if inputOK && outputOK {
		escInput = newEscapeBackReader(inputFile)
		options = append(options, survey.WithStdio(escInput, outputFile, outputFile))
	}

	err := askSurveyOne(prompt, response, options...)
	if errors.Is(err, terminal.InterruptErr) && escInput != nil && escInput.TakeBack() {
		return errWizardBack
	}

	return err
}

func surveyColorsEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}

	termValue := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return termValue != "dumb"
}

func printSurveyHint(output io.Writer, message string) {
	fmt.Fprintln(output, message)
}
