// Package registry is the catalog of crafting actions. It owns one condition
// evaluator and one action executor and resolves actions by id.
package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Registry maps action ids to actions.
//
// Not safe for concurrent mutation. Register everything at setup time; reads
// and executions may then run from several goroutines provided the random
// source and id generator are safe for concurrent use.
type Registry struct {
	actions   map[string]action.CraftAction
	order     []string
	evaluator *condition.Evaluator
	executor  *action.Executor
	logger    *slog.Logger
}

type config struct {
	rand       action.Rand
	ids        ident.Generator
	logger     *slog.Logger
	builtins   bool
	evalOpts   []condition.Option
	actionOpts []action.ExecutorOption
}

// Option configures a Registry.
type Option func(*config)

// WithRand sets the random source handed to the executor.
func WithRand(r action.Rand) Option {
	return func(c *config) {
		c.rand = r
	}
}

// WithIDGenerator sets the id generator handed to the executor.
func WithIDGenerator(g ident.Generator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithLogger sets the logger for the registry and everything it owns.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithoutBuiltinActions skips seeding the built-in action catalog. Built-in
// handlers and evaluators stay registered.
func WithoutBuiltinActions() Option {
	return func(c *config) {
		c.builtins = false
	}
}

// WithEvaluatorOptions passes extra options to the condition evaluator.
func WithEvaluatorOptions(opts ...condition.Option) Option {
	return func(c *config) {
		c.evalOpts = append(c.evalOpts, opts...)
	}
}

// WithExecutorOptions passes extra options to the action executor.
func WithExecutorOptions(opts ...action.ExecutorOption) Option {
	return func(c *config) {
		c.actionOpts = append(c.actionOpts, opts...)
	}
}

// New creates a registry seeded with action.BuiltinActions.
func New(opts ...Option) *Registry {
	cfg := config{
		rand:     action.Entropy,
		ids:      ident.Default,
		logger:   slog.Default(),
		builtins: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	evaluator := condition.NewEvaluator(append([]condition.Option{condition.WithLogger(cfg.logger)}, cfg.evalOpts...)...)
	executor := action.NewExecutor(evaluator, append([]action.ExecutorOption{
		action.WithRand(cfg.rand),
		action.WithIDGenerator(cfg.ids),
		action.WithLogger(cfg.logger),
	}, cfg.actionOpts...)...)

	r := &Registry{
		actions:   make(map[string]action.CraftAction),
		evaluator: evaluator,
		executor:  executor,
		logger:    cfg.logger,
	}
	if cfg.builtins {
		for _, a := range action.BuiltinActions() {
			// Built-in ids are unique.
			_ = r.RegisterAction(a)
		}
	}
	return r
}

// Evaluator returns the owned condition evaluator.
func (r *Registry) Evaluator() *condition.Evaluator { return r.evaluator }

// Executor returns the owned action executor.
func (r *Registry) Executor() *action.Executor { return r.executor }

// RegisterAction adds a. Registering an id twice fails.
func (r *Registry) RegisterAction(a action.CraftAction) error {
	if a.ID == "" {
		return fmt.Errorf("register action: empty id")
	}
	if _, exists := r.actions[a.ID]; exists {
		return fmt.Errorf("register action %s: already registered", a.ID)
	}
	r.actions[a.ID] = a
	r.order = append(r.order, a.ID)
	r.logger.Debug("action registered", "action", a.ID, "category", a.Category)
	return nil
}

// GetAction returns the action with the given id.
func (r *Registry) GetAction(id string) (action.CraftAction, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// HasAction reports whether id is registered.
func (r *Registry) HasAction(id string) bool {
	_, ok := r.actions[id]
	return ok
}

// Actions returns every action in registration order.
func (r *Registry) Actions() []action.CraftAction {
	out := make([]action.CraftAction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.actions[id])
	}
	return out
}

// GetActionsByCategory returns the actions of one category in registration
// order.
func (r *Registry) GetActionsByCategory(category string) []action.CraftAction {
	var out []action.CraftAction
	for _, id := range r.order {
		if a := r.actions[id]; a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (r *Registry) Categories() []string {
	var cats []string
	for _, a := range r.actions {
		if !slices.Contains(cats, a.Category) {
			cats = append(cats, a.Category)
		}
	}
	slices.Sort(cats)
	return cats
}

// CanExecuteAction reports whether the action with the given id can run on
// it. Disabled actions report false.
func (r *Registry) CanExecuteAction(id string, it item.Item, ctx ir.Object) (bool, error) {
	a, ok := r.actions[id]
	if !ok {
		return false, action.NewNotFoundError(id)
	}
	if !a.IsEnabled {
		return false, nil
	}
	return r.executor.CanExecute(a, it, ctx)
}

// ExecuteAction runs the action with the given id on it.
func (r *Registry) ExecuteAction(id string, it item.Item, ctx ir.Object) (action.Result, error) {
	a, ok := r.actions[id]
	if !ok {
		return action.Result{}, action.NewNotFoundError(id)
	}
	return r.executor.Execute(a, it, ctx)
}

// EvaluateCondition evaluates c with the owned evaluator.
func (r *Registry) EvaluateCondition(c condition.Condition, it item.Item, ctx ir.Object) (bool, error) {
	return r.evaluator.Evaluate(c, it, ctx)
}
