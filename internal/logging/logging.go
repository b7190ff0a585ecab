// Package logging builds the logrus loggers shared by the wizard components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures a logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a logger from the given options.
//
// An empty level defaults to "warn" so the interactive wizard output stays
// readable, and an empty format defaults to text.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	logger.SetOutput(output)

	levelName := strings.TrimSpace(opts.Level)
	if levelName == "" {
		levelName = "warn"
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", levelName, err)
	}
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	return logger, nil
}

// Discard returns an entry that drops everything. Components fall back to it
// when no logger is injected.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logrus.NewEntry(logger)
}

// Component scopes a logger to a named component.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	if logger == nil {
		return Discard().WithField("component", name)
	}

	return logger.WithField("component", name)
}
