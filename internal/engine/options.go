package engine

import (
	"log/slog"

	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/store"
)

type options struct {
	clock         Clock
	seq           *Sequence
	ids           ident.Generator
	store         store.GuideStore
	maxSteps      int
	maxIterations int
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		clock:         SystemClock{},
		ids:           ident.Default,
		maxSteps:      DefaultMaxSteps,
		maxIterations: guide.DefaultMaxIterations,
		logger:        slog.Default(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.seq == nil {
		o.seq = NewSequence()
	}
	if o.store == nil {
		o.store = store.NewMemory()
	}
	return o
}

// Option configures a StepExecutor or a Manager.
type Option func(*options)

// WithClock sets the wall clock used for timestamps.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithSequence sets the logical counter that numbers history entries.
func WithSequence(s *Sequence) Option {
	return func(o *options) {
		o.seq = s
	}
}

// WithIDGenerator sets the id source for guides and steps.
func WithIDGenerator(g ident.Generator) Option {
	return func(o *options) {
		o.ids = g
	}
}

// WithStore sets the guide store. Defaults to a fresh in-memory store.
func WithStore(s store.GuideStore) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithMaxSteps sets the step budget of ExecuteGuide.
//
// Values <= 0 are ignored and the default (100) is used.
func WithMaxSteps(maxSteps int) Option {
	return func(o *options) {
		if maxSteps > 0 {
			o.maxSteps = maxSteps
		}
	}
}

// WithMaxIterations sets the loop cap for loop steps that do not set their
// own. Values <= 0 are ignored.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
