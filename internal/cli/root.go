package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/andreagrandi/conformance-wizard/internal/app"
	"github.com/spf13/cobra"
)

var rootOptions struct {
	configPath string
	serverURL  string
	logLevel   string
	insecure   bool
	timeout    time.Duration
}

var rootCmd = &cobra.Command{
	Use:   app.Name,
	Short: "Configure and run an Open Banking conformance suite",
	Long: `conformance-wizard walks through configuring a conformance suite run:
a discovery model describing the bank's APIs, the certificates and OAuth
client used to reach them, and finally computing and running the test cases.

Each step is validated against the suite backend before the next one opens.`,
	Version: app.Version,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGuidedWizard(cmd)
	},
}

func init() {
	rootCmd.SetVersionTemplate(app.FullVersion() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOptions.configPath, "config", "", "config file (.json, .yaml or .toml; default ~/.config/conformance-wizard/config.json)")
	flags.StringVar(&rootOptions.serverURL, "server", "", "conformance suite base URL (default "+app.DefaultServerURL+")")
	flags.StringVar(&rootOptions.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&rootOptions.insecure, "insecure", false, "skip TLS verification of the suite certificate")
	flags.DurationVar(&rootOptions.timeout, "timeout", 0, "timeout for each suite request")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the guided configuration wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGuidedWizard(cmd)
		},
	})
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
