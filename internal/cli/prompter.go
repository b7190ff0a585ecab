package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	errWizardBack = errors.New("wizard: back")
	errWizardQuit = errors.New("wizard: quit")
)

// prompter asks the user for wizard input. Implementations return
// errWizardBack when the user asks to go back a step.
type prompter interface {
	Select(message string, options []string, defaultOption string) (string, error)
	Input(message string, defaultValue string) (string, error)
	Secret(message string) (string, error)
	Confirm(message string, defaultYes bool) (bool, error)
}

type plainPrompter struct {
	reader *bufio.Reader
	output io.Writer
}

func newPlainPrompter(input io.Reader, output io.Writer) *plainPrompter {
	return &plainPrompter{reader: bufio.NewReader(input), output: output}
}

func (p *plainPrompter) Select(message string, options []string, defaultOption string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options to select from")
	}

	fmt.Fprintln(p.output, message)
	defaultIndex := 0
	for index, option := range options {
		fmt.Fprintf(p.output, "  %d) %s\n", index+1, option)
		if option == defaultOption {
			defaultIndex = index + 1
		}
	}

	prompt := fmt.Sprintf("Option [1-%d]: ", len(options))
	if defaultIndex > 0 {
		prompt = fmt.Sprintf("Option [1-%d] (default %d): ", len(options), defaultIndex)
	}

	for {
		choice, err := readTrimmedLine(p.reader, p.output, prompt)
		if err != nil {
			return "", err
		}

		if strings.EqualFold(choice, "back") {
			return "", errWizardBack
		}

		if choice == "" && defaultIndex > 0 {
			return options[defaultIndex-1], nil
		}

		if number, err := strconv.Atoi(choice); err == nil && number >= 1 && number <= len(options) {
			return options[number-1], nil
		}

		for _, option := range options {
			if strings.EqualFold(option, choice) {
				return option, nil
			}
		}

		fmt.Fprintf(p.output, "Invalid option %q. Enter 1-%d.\n", choice, len(options))
	}
}

func (p *plainPrompter) Input(message string, defaultValue string) (string, error) {
	prompt := message + ": "
	if defaultValue != "" {
		prompt = fmt.Sprintf("%s [%s]: ", message, defaultValue)
	}

	value, err := readTrimmedLine(p.reader, p.output, prompt)
	if err != nil {
		return "", err
	}

	if value == "" {
		return defaultValue, nil
	}

	return value, nil
}

func (p *plainPrompter) Secret(message string) (string, error) {
	return readTrimmedLine(p.reader, p.output, message+": ")
}

func (p *plainPrompter) Confirm(message string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	return askYesNo(p.reader, p.output, message+suffix, defaultYes)
}

func askYesNo(reader *bufio.Reader, output io.Writer, prompt string, defaultYes bool) (bool, error) {
	for {
		fmt.Fprint(output, prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" {
			return defaultYes, nil
		}

		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("invalid answer %q", answer)
			}

			fmt.Fprintln(output, "  Please answer y or n.")
		}
	}
}

func readTrimmedLine(reader *bufio.Reader, output io.Writer, prompt string) (string, error) {
	fmt.Fprint(output, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		if len(strings.TrimSpace(line)) == 0 {
			return "", err
		}
	}

	return strings.TrimSpace(line), nil
}
