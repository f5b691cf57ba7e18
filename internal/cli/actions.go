package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/action"
)

// ActionsOptions holds flags for the actions command.
type ActionsOptions struct {
	*RootOptions
	Category string
}

// ActionSummary is one row of the action listing.
type ActionSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	CustomHandler string   `json:"customHandler,omitempty"`
	Outcomes      int      `json:"outcomes"`
	Enabled       bool     `json:"enabled"`
	Tags          []string `json:"tags,omitempty"`
}

// ActionsResult is the payload of the actions command.
type ActionsResult struct {
	Actions    []ActionSummary `json:"actions"`
	Categories []string        `json:"categories"`
}

// NewActionsCommand creates the actions command.
func NewActionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ActionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List registered crafting actions",
		Long: `List the crafting actions available to guides.

The listing covers the built-in currency actions plus every action of
the --catalog, in registration order.

Examples:
  craftforge actions
  craftforge actions --category quality
  craftforge actions --catalog ./catalog.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listActions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only list actions of this category")

	return cmd
}

func listActions(opts *ActionsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	s, err := newSession(opts.RootOptions)
	if err != nil {
		return reportSessionError(formatter, err)
	}

	categories := s.registry.Categories()
	actions := s.registry.Actions()
	if opts.Category != "" {
		if !slices.Contains(categories, opts.Category) {
			msg := fmt.Sprintf("unknown category %q: must be one of %v", opts.Category, categories)
			if err := formatter.Error(ErrCodeNotFound, msg, nil); err != nil {
				return err
			}
			return NewExitError(ExitCommandError, msg)
		}
		actions = s.registry.GetActionsByCategory(opts.Category)
	}

	result := ActionsResult{
		Actions:    make([]ActionSummary, 0, len(actions)),
		Categories: categories,
	}
	for _, a := range actions {
		result.Actions = append(result.Actions, summarizeAction(a))
	}

	return formatter.Success(result, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tHANDLER\tENABLED")
		for _, a := range result.Actions {
			handler := a.CustomHandler
			if handler == "" {
				handler = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", a.ID, a.Name, a.Category, handler, a.Enabled)
		}
		tw.Flush()
		fmt.Fprintf(w, "\n%d action(s) in %s\n", len(result.Actions), strings.Join(categoryScope(opts.Category, categories), ", "))
	})
}

func summarizeAction(a action.CraftAction) ActionSummary {
	return ActionSummary{
		ID:            a.ID,
		Name:          a.Name,
		Category:      a.Category,
		CustomHandler: a.CustomHandler,
		Outcomes:      len(a.Outcomes),
		Enabled:       a.IsEnabled,
		Tags:          a.Tags,
	}
}

func categoryScope(category string, all []string) []string {
	if category != "" {
		return []string{category}
	}
	return all
}
