package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run crafting scenarios",
		Long: `Run every YAML scenario under a directory through the engine.

A scenario names a starting item, a guide (inline or guide_file), an
optional CUE catalog and a seed or scripted rolls, then asserts on the
run: success, executed actions, step results and the final item.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  craftforge test ./scenarios
  craftforge test ./scenarios --filter "scrap-*"
  craftforge test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		msg := fmt.Sprintf("scenarios directory not found: %s", scenariosDir)
		if outErr := formatter.Error(ErrCodeNotFound, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}

	suite, err := harness.RunSuite(scenariosDir, opts.Filter)
	if err != nil {
		if outErr := formatter.Error(ErrCodeScanError, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	opts.logger().Debug("scenario suite finished", "dir", scenariosDir, "total", suite.Total, "failed", suite.Failed)

	if suite.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", suite.Failed)
		if formatter.Format == "json" {
			if err := formatter.Error("E_TEST_FAILED", msg, suite); err != nil {
				return err
			}
		} else {
			writeSuiteText(formatter.Writer, suite)
		}
		return NewExitError(ExitFailure, msg)
	}

	return formatter.Success(suite, func(w io.Writer) {
		writeSuiteText(w, suite)
	})
}

func writeSuiteText(w io.Writer, suite *harness.SuiteResult) {
	if suite.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, sc := range suite.Scenarios {
		if sc.Pass {
			fmt.Fprintf(w, "✓ %s\n", sc.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", sc.Name)
		for _, e := range sc.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", suite.Passed, suite.Failed, suite.Total)
	if suite.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}
