package cli

import (
	"context"
	"fmt"

	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/andreagrandi/conformance-wizard/internal/render"
	"github.com/andreagrandi/conformance-wizard/internal/watch"
	"github.com/spf13/cobra"
)

var waitForWatchEnd = func(ctx context.Context, _ <-chan watch.Result) {
	<-ctx.Done()
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "watch <discovery-file>",
		Short: "Re-validate a discovery model file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	})
}

func runWatch(cmd *cobra.Command, path string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	output := cmd.OutOrStdout()
	results := make(chan watch.Result, 1)

	onResult := func(result watch.Result) {
		switch {
		case result.Err != nil:
			fmt.Fprintln(output, render.RenderBanner(sess.theme, []error{result.Err}))
		case len(result.ParseProblems) > 0:
			fmt.Fprintln(output, "Discovery model is not valid JSON:")
			fmt.Fprintln(output, render.RenderProblems(sess.theme, result.ParseProblems))
		case result.Validation != nil && result.Validation.Success:
			fmt.Fprintln(output, sess.theme.Completed.Render("Discovery model accepted."))
		case result.Validation == nil:
			fmt.Fprintln(output, "Discovery model unchanged.")
		}

		select {
		case results <- result:
		default:
		}
	}

	watcher, err := watch.NewDiscoveryWatcher(expandHome(path), sess.store, onResult,
		watch.WithLogger(logging.Component(sess.logger, "watch")),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Watching %s. Press Ctrl+C to stop.\n", watcher.Path())

	ctx := commandContext(cmd)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	waitForWatchEnd(ctx, results)

	return nil
}
