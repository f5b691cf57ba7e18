package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// GuideValidation is the validation outcome of one guide file.
type GuideValidation struct {
	File   string               `json:"file"`
	Title  string               `json:"title,omitempty"`
	Shared bool                 `json:"shared,omitempty"`
	Valid  bool                 `json:"valid"`
	Errors []ir.ValidationError `json:"errors,omitempty"`
}

// ValidateResult is the payload of the validate command.
type ValidateResult struct {
	CatalogActions int               `json:"catalogActions"`
	Guides         []GuideValidation `json:"guides"`
	Invalid        int               `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [guide-file...]",
		Short: "Validate guides and action catalogs",
		Long: `Validate crafting guides (JSON, YAML or share envelopes) against the
registered actions, and the --catalog when one is given.

Every finding is reported, not only the first. Starting and target items
embedded in a guide are validated as well.

Exit codes:
  0 - Everything is valid
  1 - One or more findings
  2 - Command error (missing files, etc.)

Examples:
  craftforge validate guide.yaml
  craftforge validate --catalog ./catalog.cue
  craftforge validate --catalog ./catalog guide.yaml other.json --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if len(files) == 0 && opts.Catalog == "" {
		msg := "nothing to validate: pass guide files or --catalog"
		if err := formatter.Error(ErrCodeGeneric, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}

	s, err := newSession(opts)
	if err != nil {
		return reportSessionError(formatter, err)
	}
	formatter.VerboseLog("Catalog: %d action(s)", len(s.catalog))

	result := ValidateResult{
		CatalogActions: len(s.catalog),
		Guides:         make([]GuideValidation, 0, len(files)),
	}
	for _, file := range files {
		formatter.VerboseLog("Validating guide: %s", file)
		dec, err := LoadGuideFile(file)
		if err != nil {
			if outErr := formatter.Error(loadErrorCode(err), err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "failed to load guide", err)
		}

		errs := s.manager.ValidateGuide(dec.Guide).Errors
		errs = append(errs, embeddedItemErrors(dec.Guide)...)
		gv := GuideValidation{
			File:   file,
			Title:  dec.Guide.Title,
			Shared: dec.Envelope != nil,
			Valid:  len(errs) == 0,
			Errors: errs,
		}
		if !gv.Valid {
			result.Invalid++
		}
		result.Guides = append(result.Guides, gv)
	}

	if result.Invalid > 0 {
		msg := fmt.Sprintf("%d guide(s) invalid", result.Invalid)
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeInvalidGuide, msg, result); err != nil {
				return err
			}
		} else {
			writeValidateText(formatter.Writer, result)
		}
		return NewExitError(ExitFailure, msg)
	}

	return formatter.Success(result, func(w io.Writer) {
		writeValidateText(w, result)
	})
}

// embeddedItemErrors validates the starting and target items a guide may
// carry. Field paths are prefixed with the guide field.
func embeddedItemErrors(g guide.CraftGuide) []ir.ValidationError {
	var errs []ir.ValidationError
	for _, emb := range []struct {
		field string
		it    *item.Item
	}{
		{"startingItem", g.StartingItem},
		{"targetItem", g.TargetItem},
	} {
		if emb.it == nil {
			continue
		}
		for _, e := range item.Validate(*emb.it).Errors {
			e.Field = emb.field + "." + e.Field
			errs = append(errs, e)
		}
	}
	return errs
}

func writeValidateText(w io.Writer, result ValidateResult) {
	if result.CatalogActions > 0 {
		fmt.Fprintf(w, "✓ Catalog valid (%d action(s))\n", result.CatalogActions)
	}
	for _, gv := range result.Guides {
		if gv.Valid {
			fmt.Fprintf(w, "✓ %s\n", gv.File)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%d error(s))\n", gv.File, len(gv.Errors))
		for _, e := range gv.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	if result.Invalid == 0 {
		fmt.Fprintln(w, "✓ All valid")
	}
}
