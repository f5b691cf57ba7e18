package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/craftforge/internal/config"
	"github.com/roach88/craftforge/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Catalog string // CUE catalog file or directory registered on top of the built-ins

	// Config starts from the environment; flags override it.
	Config config.Config

	// Logger is built from Config before any subcommand runs. Commands
	// constructed directly (tests) fall back to a discarding logger.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the craftforge CLI.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = defaultConfig()
	}
	opts := &RootOptions{Config: cfg}

	cmd := &cobra.Command{
		Use:     "craftforge",
		Short:   "craftforge - crafting rules engine",
		Long:    "Evaluate crafting actions on items and run crafting guides: linear, conditional, branching and looping step programs.",
		Version: ir.EngineVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", cfgErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Verbose {
				opts.Config.LogLevel = "debug"
			}
			if err := opts.Config.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Logger = opts.Config.NewLogger(cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Catalog, "catalog", "", "CUE action catalog (file or directory)")
	flags.Uint64Var(&opts.Config.Seed, "seed", cfg.Seed, "random seed, 0 for an unseeded source (env CRAFTFORGE_SEED)")
	flags.IntVar(&opts.Config.MaxSteps, "max-steps", cfg.MaxSteps, "step budget of a guide run (env CRAFTFORGE_MAX_STEPS)")
	flags.IntVar(&opts.Config.MaxIterations, "max-iterations", cfg.MaxIterations, "loop cap for loops without one (env CRAFTFORGE_MAX_ITERATIONS)")
	flags.StringVar(&opts.Config.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error (env CRAFTFORGE_LOG_LEVEL)")
	flags.StringVar(&opts.Config.LogFormat, "log-format", cfg.LogFormat, "log format: text|json (env CRAFTFORGE_LOG_FORMAT)")

	// Add subcommands
	cmd.AddCommand(NewActionsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewShareCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// defaultConfig mirrors the envDefault tags of config.Config.
func defaultConfig() config.Config {
	return config.Config{
		MaxSteps:      100,
		MaxIterations: 10,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// logger returns the configured logger, or one that discards everything.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
