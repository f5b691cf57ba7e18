package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/engine"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ir"
)

// ImportResult is the payload of the import command.
type ImportResult struct {
	GuideID string            `json:"guideId"`
	Title   string            `json:"title"`
	Steps   int               `json:"steps"`
	Output  string            `json:"output,omitempty"`
	Guide   *guide.CraftGuide `json:"guide,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a guide or share envelope",
		Long: `Import a guide or a share envelope (JSON or YAML).

The guide is validated against the registered actions and re-issued
with a fresh id and fresh timestamps, then written back out in the
chosen encoding. Import is how a shared guide becomes a runnable one.

Examples:
  craftforge import guide.share.json
  craftforge import guide.share.json -o guide.yaml --encoding yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "json", "document encoding (json|yaml)")

	return cmd
}

func runImport(opts *EncodingOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkEncoding(formatter, opts.Encoding); err != nil {
		return err
	}

	s, err := newSession(opts.RootOptions)
	if err != nil {
		return reportSessionError(formatter, err)
	}

	data, err := readInput(file)
	if err != nil {
		if outErr := formatter.Error(loadErrorCode(err), err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	g, err := s.manager.ImportGuide(data)
	if err != nil {
		var verrs ir.ValidationErrors
		if engine.IsInvalidGuide(err) && errors.As(err, &verrs) {
			if outErr := formatter.Invalid(ErrCodeInvalidGuide, fmt.Sprintf("%s is not a valid guide", file), verrs); outErr != nil {
				return outErr
			}
			return NewExitError(ExitFailure, "invalid guide")
		}
		if outErr := formatter.Error(ErrCodeDecodeFailed, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to import guide", err)
	}
	opts.logger().Info("guide imported", "guide", g.ID, "title", g.Title)

	result := ImportResult{GuideID: g.ID, Title: g.Title, Steps: len(g.Steps), Output: opts.Output}
	if opts.Output == "" && formatter.Format == "json" {
		result.Guide = &g
		return formatter.Success(result, nil)
	}

	out, err := guide.Encode(g, guide.Format(opts.Encoding))
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to encode guide", err)
	}
	return writeDocument(opts, formatter, out, result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Imported %q (%d step(s)) as %s -> %s\n", result.Title, result.Steps, result.GuideID, opts.Output)
	})
}
