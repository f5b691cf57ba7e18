package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/guide"
)

// EncodingOptions selects the document encoding of share and import.
type EncodingOptions struct {
	*RootOptions
	Output   string
	Encoding string
}

// ValidEncodings are the document encodings share and import can write.
var ValidEncodings = []string{string(guide.FormatJSON), string(guide.FormatYAML)}

// ShareResult is the payload of the share command.
type ShareResult struct {
	ShareID  string               `json:"shareId"`
	Title    string               `json:"title"`
	Output   string               `json:"output,omitempty"`
	Envelope *guide.ShareEnvelope `json:"envelope,omitempty"`
}

// NewShareCommand creates the share command.
func NewShareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "share <guide-file>",
		Short: "Wrap a guide in a share envelope",
		Long: `Validate a guide and wrap it in a share envelope.

The envelope strips the guide id and stamps a share id derived from the
guide's content, so the same guide always shares under the same id.

Examples:
  craftforge share guide.yaml
  craftforge share guide.yaml -o guide.share.json
  craftforge share guide.json --encoding yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "json", "document encoding (json|yaml)")

	return cmd
}

func runShare(opts *EncodingOptions, guideFile string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if err := checkEncoding(formatter, opts.Encoding); err != nil {
		return err
	}

	s, err := newSession(opts.RootOptions)
	if err != nil {
		return reportSessionError(formatter, err)
	}

	dec, err := LoadGuideFile(guideFile)
	if err != nil {
		if outErr := formatter.Error(loadErrorCode(err), err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to load guide", err)
	}
	if res := s.manager.ValidateGuide(dec.Guide); !res.IsValid {
		if err := formatter.Invalid(ErrCodeInvalidGuide, fmt.Sprintf("guide %s is invalid", guideFile), res.Errors); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "invalid guide")
	}

	g := s.manager.CreateGuide(dec.Guide)
	env, err := s.manager.ShareGuide(g.ID)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to share guide", err)
	}
	opts.logger().Info("guide shared", "share_id", env.Guide.ShareID, "title", env.Guide.Title)

	result := ShareResult{ShareID: env.Guide.ShareID, Title: env.Guide.Title, Output: opts.Output}
	if opts.Output == "" && formatter.Format == "json" {
		result.Envelope = &env
		return formatter.Success(result, nil)
	}

	data, err := guide.Encode(env, guide.Format(opts.Encoding))
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "failed to encode envelope", err)
	}
	return writeDocument(opts, formatter, data, result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Shared %q as %s -> %s\n", result.Title, result.ShareID, opts.Output)
	})
}

// writeDocument writes an encoded document to --output, or to stdout when
// no output file is set. With an output file the summary is reported
// instead.
func writeDocument(opts *EncodingOptions, formatter *OutputFormatter, data []byte, summary any, render func(io.Writer)) error {
	if opts.Output == "" {
		if _, err := formatter.Writer.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Fprintln(formatter.Writer)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		if outErr := formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", opts.Output, err), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return formatter.Success(summary, render)
}

func checkEncoding(formatter *OutputFormatter, encoding string) error {
	if slices.Contains(ValidEncodings, encoding) {
		return nil
	}
	msg := fmt.Sprintf("invalid encoding %q: must be one of %v", encoding, ValidEncodings)
	if err := formatter.Error(ErrCodeGeneric, msg, nil); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, msg)
}
