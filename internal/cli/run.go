package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/engine"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ItemFile   string
	OutputItem string
	History    bool
}

// RunStep is one step result of a run, without the item snapshot.
type RunStep struct {
	StepID      string   `json:"stepId"`
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	ActionID    string   `json:"actionId,omitempty"`
	BranchTaken string   `json:"branchTaken,omitempty"`
	BranchLabel string   `json:"branchLabel,omitempty"`
	Iterations  int      `json:"iterations,omitempty"`
	ShouldLoop  bool     `json:"shouldLoop,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// RunAction is one executed action of the run history.
type RunAction struct {
	Seq      int64  `json:"seq"`
	StepID   string `json:"stepId"`
	ActionID string `json:"actionId"`
}

// RunReport is the payload of the run command.
type RunReport struct {
	GuideID         string      `json:"guideId"`
	Title           string      `json:"title"`
	Success         bool        `json:"success"`
	BudgetExhausted bool        `json:"budgetExhausted,omitempty"`
	Steps           []RunStep   `json:"steps"`
	History         []RunAction `json:"history"`
	Final           item.Item   `json:"final"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <guide-file>",
		Short: "Run a crafting guide on an item",
		Long: `Run a crafting guide to completion on an item.

The item comes from --item (JSON or YAML) or from the guide's
startingItem. Steps run in order until one fails, the guide completes or
the step budget (--max-steps) is spent. --seed makes random outcomes
reproducible.

Exit codes:
  0 - The guide completed
  1 - A step failed, the budget ran out or the input is invalid
  2 - Command error (missing files, no item, etc.)

Examples:
  craftforge run guide.yaml --item item.json
  craftforge run guide.yaml --seed 42 --history
  craftforge run guide.yaml --item item.yaml --output-item final.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuide(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ItemFile, "item", "", "starting item file (defaults to the guide's startingItem)")
	cmd.Flags().StringVar(&opts.OutputItem, "output-item", "", "write the final item as JSON to this file")
	cmd.Flags().BoolVar(&opts.History, "history", false, "print every executed action")

	return cmd
}

func runGuide(opts *RunOptions, guideFile string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

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

	start, err := startingItem(opts, dec.Guide, s)
	if err != nil {
		code := loadErrorCode(err)
		if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
			return outErr
		}
		if code == ErrCodeInvalidItem || code == ErrCodeDecodeFailed {
			return WrapExitError(ExitFailure, "invalid item", err)
		}
		return WrapExitError(ExitCommandError, "no starting item", err)
	}

	g := s.manager.CreateGuide(dec.Guide)
	logger.Info("running guide", "guide", g.ID, "title", g.Title, "item", start.ID,
		"seed", opts.Config.Seed, "max_steps", opts.Config.MaxSteps)

	run, err := s.manager.ExecuteGuide(g.ID, start)
	if err != nil {
		if outErr := formatter.Error(ErrCodeRunFailed, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "guide run failed", err)
	}

	report := newRunReport(g, run)

	if opts.OutputItem != "" {
		data, err := item.Export(report.Final)
		if err == nil {
			err = os.WriteFile(opts.OutputItem, data, 0o644)
		}
		if err != nil {
			if outErr := formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing final item: %v", err), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "failed to write final item", err)
		}
		formatter.VerboseLog("Final item written to %s", opts.OutputItem)
	}

	if err := formatter.Success(report, func(w io.Writer) {
		writeRunText(w, report, opts.History)
	}); err != nil {
		return err
	}

	if !report.Success {
		if report.BudgetExhausted {
			return NewExitError(ExitFailure, fmt.Sprintf("step budget of %d exhausted", opts.Config.MaxSteps))
		}
		return NewExitError(ExitFailure, "guide run did not complete")
	}
	return nil
}

// startingItem picks the run's item: --item wins over the guide's own.
func startingItem(opts *RunOptions, g guide.CraftGuide, s *session) (item.Item, error) {
	if opts.ItemFile != "" {
		return LoadItemFile(opts.ItemFile, s.ids)
	}
	if g.StartingItem == nil {
		return item.Item{}, &LoadError{
			Code:    ErrCodeNotFound,
			Message: "no starting item: pass --item or set startingItem in the guide",
		}
	}

	it := item.Copy(*g.StartingItem)
	if it.ID == "" {
		it.ID = s.ids.NewID()
	}
	if res := item.Validate(it); !res.IsValid {
		return item.Item{}, &LoadError{
			Code:    ErrCodeInvalidItem,
			Message: fmt.Sprintf("startingItem: %v", ir.ValidationErrors(res.Errors)),
		}
	}
	return it, nil
}

func newRunReport(g guide.CraftGuide, run engine.GuideRun) RunReport {
	report := RunReport{
		GuideID:         g.ID,
		Title:           g.Title,
		Success:         run.Success,
		BudgetExhausted: run.BudgetExhausted,
		Steps:           make([]RunStep, 0, len(run.Results)),
		History:         make([]RunAction, 0, len(run.State.StepHistory)),
		Final:           run.State.CurrentItem,
	}
	for _, r := range run.Results {
		report.Steps = append(report.Steps, RunStep{
			StepID:      r.StepID,
			Success:     r.Success,
			Message:     r.Message,
			ActionID:    r.ActionID,
			BranchTaken: r.BranchTaken,
			BranchLabel: r.BranchLabel,
			Iterations:  r.Iterations,
			ShouldLoop:  r.ShouldLoop,
			Warnings:    r.Warnings,
		})
	}
	for _, h := range run.State.StepHistory {
		report.History = append(report.History, RunAction{Seq: h.Seq, StepID: h.StepID, ActionID: h.ActionID})
	}
	return report
}

func writeRunText(w io.Writer, report RunReport, history bool) {
	fmt.Fprintf(w, "Guide: %s\n", report.Title)
	for _, st := range report.Steps {
		mark := "✓"
		if !st.Success {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", mark, st.StepID, st.Message)
		for _, warn := range st.Warnings {
			fmt.Fprintf(w, "      warning: %s\n", warn)
		}
	}

	if history {
		fmt.Fprintln(w, "History:")
		for _, h := range report.History {
			fmt.Fprintf(w, "  [%d] %s (step %s)\n", h.Seq, h.ActionID, h.StepID)
		}
	}

	fmt.Fprintf(w, "Final item: %s\n", describeItem(report.Final))
	for _, m := range report.Final.Modifiers {
		fmt.Fprintf(w, "  %s T%d %s\n", m.Type, m.Tier, m.Name)
	}

	switch {
	case report.Success:
		fmt.Fprintf(w, "✓ Guide completed (%d action(s))\n", len(report.History))
	case report.BudgetExhausted:
		fmt.Fprintln(w, "✗ Step budget exhausted")
	default:
		fmt.Fprintln(w, "✗ Guide stopped early")
	}
}

func describeItem(it item.Item) string {
	parts := []string{
		it.BaseType,
		string(it.Rarity),
		fmt.Sprintf("ilvl %d", it.ItemLevel),
		fmt.Sprintf("quality %d", it.Quality),
	}
	if it.IsCorrupted {
		parts = append(parts, "corrupted")
	}
	if len(it.Sockets) > 0 {
		parts = append(parts, fmt.Sprintf("%d socket(s)", len(it.Sockets)))
	}
	return strings.Join(parts, ", ")
}
