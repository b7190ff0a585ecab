package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/andreagrandi/conformance-wizard/internal/config"
	"github.com/andreagrandi/conformance-wizard/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	featureCmd := &cobra.Command{
		Use:   "feature",
		Short: "Manage feature flags",
		Long: `Feature flags switch optional wizard behaviour on or off. They are stored
under "features" in the config file selected with --config.`,
	}

	featureCmd.AddCommand(newFeatureToggleCmd(true))
	featureCmd.AddCommand(newFeatureToggleCmd(false))
	featureCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all feature flags and their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listFeatures(cmd.OutOrStdout())
		},
	})

	rootCmd.AddCommand(featureCmd)
}

func newFeatureToggleCmd(enabled bool) *cobra.Command {
	use, short := "disable <feature>", "Disable a feature flag"
	if enabled {
		use, short = "enable <feature>", "Enable a feature flag"
	}

	return &cobra.Command{
		Use:       use,
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: featureNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setFeatureFlag(cmd.OutOrStdout(), args[0], enabled)
		},
	}
}

func featureNames() []string {
	names := make([]string, 0, len(config.FeatureRegistry))
	for name := range config.FeatureRegistry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func setFeatureFlag(output io.Writer, name string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetFeature(name, enabled); err != nil {
		return err
	}

	action := "disabled"
	if enabled {
		action = "enabled"
	}

	fmt.Fprintf(output, "Feature %q %s in %s.\n", name, action, cfg.Path())

	return nil
}

func listFeatures(output io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	features := cfg.Features()
	if len(features) == 0 {
		fmt.Fprintln(output, "No feature flags available.")
		return nil
	}

	fmt.Fprintf(output, "Feature flags (%s):\n", cfg.Path())
	fmt.Fprintln(output, render.FeaturesTable(render.PlainTheme(), features))

	return nil
}
