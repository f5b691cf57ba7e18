package action

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Env carries the collaborators a handler may draw on.
type Env struct {
	Rand   Rand
	IDs    ident.Generator
	Logger *slog.Logger
}

// Handler is procedural action logic registered by name. It returns the new
// item and must not modify it.
type Handler interface {
	Apply(env Env, it item.Item, a CraftAction, ctx ir.Object) (item.Item, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(env Env, it item.Item, a CraftAction, ctx ir.Object) (item.Item, error)

// Apply calls f.
func (f HandlerFunc) Apply(env Env, it item.Item, a CraftAction, ctx ir.Object) (item.Item, error) {
	return f(env, it, a, ctx)
}

// ChangeHandler applies a "custom" item change registered by name.
type ChangeHandler interface {
	ApplyChange(env Env, it item.Item, ch ItemChange, ctx ir.Object) (item.Item, error)
}

// ChangeHandlerFunc adapts a function to ChangeHandler.
type ChangeHandlerFunc func(env Env, it item.Item, ch ItemChange, ctx ir.Object) (item.Item, error)

// ApplyChange calls f.
func (f ChangeHandlerFunc) ApplyChange(env Env, it item.Item, ch ItemChange, ctx ir.Object) (item.Item, error) {
	return f(env, it, ch, ctx)
}

// Result is the outcome of one action execution.
type Result struct {
	Item item.Item `json:"item"`
	// Outcome is the selected outcome. It is nil when a custom handler ran
	// for an action that declares no outcomes.
	Outcome  *Outcome `json:"outcome,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Executor checks preconditions, selects outcomes and applies changes.
//
// Handler registration is expected at setup time; Executor is not safe for
// concurrent registration.
type Executor struct {
	evaluator      *condition.Evaluator
	handlers       map[string]Handler
	changeHandlers map[string]ChangeHandler
	rand           Rand
	ids            ident.Generator
	logger         *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRand sets the random source.
func WithRand(r Rand) ExecutorOption {
	return func(x *Executor) {
		x.rand = r
	}
}

// WithIDGenerator sets the generator for modifier and socket ids.
func WithIDGenerator(g ident.Generator) ExecutorOption {
	return func(x *Executor) {
		x.ids = g
	}
}

// WithLogger sets the logger for execution diagnostics.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(x *Executor) {
		x.logger = l
	}
}

// WithoutBuiltinHandlers starts from an empty handler table.
func WithoutBuiltinHandlers() ExecutorOption {
	return func(x *Executor) {
		clear(x.handlers)
	}
}

// NewExecutor creates an executor over ev with the built-in handlers
// registered.
func NewExecutor(ev *condition.Evaluator, opts ...ExecutorOption) *Executor {
	x := &Executor{
		evaluator:      ev,
		handlers:       make(map[string]Handler),
		changeHandlers: make(map[string]ChangeHandler),
		rand:           Entropy,
		ids:            ident.Default,
		logger:         slog.Default(),
	}
	maps.Copy(x.handlers, builtinHandlers())
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Evaluator returns the condition evaluator the executor consults.
func (x *Executor) Evaluator() *condition.Evaluator {
	return x.evaluator
}

// RegisterHandler adds a named action handler.
func (x *Executor) RegisterHandler(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("register handler: empty name")
	}
	if _, exists := x.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, name)
	}
	x.handlers[name] = h
	return nil
}

// RegisterChangeHandler adds a named handler for "custom" item changes.
func (x *Executor) RegisterChangeHandler(name string, h ChangeHandler) error {
	if name == "" {
		return fmt.Errorf("register change handler: empty name")
	}
	if _, exists := x.changeHandlers[name]; exists {
		return fmt.Errorf("%w: change handler %s", ErrDuplicateHandler, name)
	}
	x.changeHandlers[name] = h
	return nil
}

// Handler returns the named action handler.
func (x *Executor) Handler(name string) (Handler, error) {
	h, ok := x.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}
	return h, nil
}

// HandlerNames returns the registered action handler names, sorted.
func (x *Executor) HandlerNames() []string {
	return slices.Sorted(maps.Keys(x.handlers))
}

// HasChangeHandler reports whether a custom change handler is registered.
func (x *Executor) HasChangeHandler(name string) bool {
	_, ok := x.changeHandlers[name]
	return ok
}

func (x *Executor) env() Env {
	return Env{Rand: x.rand, IDs: x.ids, Logger: x.logger}
}

// CanExecute reports whether every precondition of a holds for it. It does
// not consult IsEnabled. The error is non-nil only for configuration errors
// such as an unknown operator.
func (x *Executor) CanExecute(a CraftAction, it item.Item, ctx ir.Object) (bool, error) {
	ok, err := x.evaluator.EvaluateAll(a.Preconditions, it, ctx)
	if err != nil {
		return false, fmt.Errorf("action %s preconditions: %w", a.ID, err)
	}
	return ok, nil
}

// Execute applies a to it and returns the new item with the selected
// outcome. it is never modified; on error no change is visible.
func (x *Executor) Execute(a CraftAction, it item.Item, ctx ir.Object) (Result, error) {
	if !a.IsEnabled {
		return Result{}, NewDisabledError(a.ID)
	}

	failed, err := x.firstFailingPrecondition(a, it, ctx)
	if err != nil {
		return Result{}, err
	}
	if failed >= 0 {
		return Result{}, NewPreconditionError(a.ID, describePrecondition(failed, a.Preconditions[failed]))
	}

	if a.CustomHandler != "" {
		if h, ok := x.handlers[a.CustomHandler]; ok {
			return x.runHandler(h, a, it, ctx)
		}
		x.logger.Debug("custom handler not registered, using declared outcomes",
			"action", a.ID,
			"handler", a.CustomHandler,
		)
	}

	eligible, err := x.eligibleOutcomes(a, it, ctx)
	if err != nil {
		return Result{}, err
	}
	if len(eligible) == 0 {
		return Result{}, NewNoValidOutcomeError(a.ID, len(a.Outcomes))
	}

	selected := SelectOutcome(eligible, x.rand)

	next, warnings, err := x.applyChanges(a, selected.Changes, it, ctx)
	if err != nil {
		return Result{}, err
	}

	x.logger.Debug("action executed",
		"action", a.ID,
		"outcome", selected.Description,
		"changes", len(selected.Changes),
	)

	return Result{Item: next, Outcome: &selected, Warnings: warnings}, nil
}

func (x *Executor) runHandler(h Handler, a CraftAction, it item.Item, ctx ir.Object) (Result, error) {
	next, err := h.Apply(x.env(), it, a, ctx)
	if err != nil {
		return Result{}, NewHandlerError(a.ID, a.CustomHandler, err)
	}

	res := Result{Item: next}
	if len(a.Outcomes) > 0 {
		first := a.Outcomes[0]
		res.Outcome = &first
	}

	x.logger.Debug("action handler executed",
		"action", a.ID,
		"handler", a.CustomHandler,
		"modifiers", len(next.Modifiers),
	)
	return res, nil
}

func (x *Executor) firstFailingPrecondition(a CraftAction, it item.Item, ctx ir.Object) (int, error) {
	for i, c := range a.Preconditions {
		ok, err := x.evaluator.Evaluate(c, it, ctx)
		if err != nil {
			return -1, fmt.Errorf("action %s precondition %d: %w", a.ID, i, err)
		}
		if !ok {
			return i, nil
		}
	}
	return -1, nil
}

// eligibleOutcomes filters outcomes against the unmodified item.
func (x *Executor) eligibleOutcomes(a CraftAction, it item.Item, ctx ir.Object) ([]Outcome, error) {
	eligible := make([]Outcome, 0, len(a.Outcomes))
	for i, o := range a.Outcomes {
		ok, err := x.evaluator.EvaluateAll(o.Conditions, it, ctx)
		if err != nil {
			return nil, fmt.Errorf("action %s outcome %d: %w", a.ID, i, err)
		}
		if ok {
			eligible = append(eligible, o)
		}
	}
	return eligible, nil
}

// SelectOutcome picks one outcome by weighted draw. A non-positive weight
// sum picks the first outcome without consuming randomness. outcomes must
// be non-empty.
func SelectOutcome(outcomes []Outcome, r Rand) Outcome {
	var total float64
	for _, o := range outcomes {
		total += o.Probability
	}
	if total <= 0 {
		return outcomes[0]
	}

	draw := r.Float64() * total
	var running float64
	for _, o := range outcomes {
		running += o.Probability
		if running >= draw {
			return o
		}
	}
	return outcomes[len(outcomes)-1]
}

func describePrecondition(idx int, c condition.Condition) string {
	switch {
	case !c.Operator.IsBuiltin():
		return fmt.Sprintf("precondition %d (%s %s) failed", idx, c.EvaluatorName(), c.Value.String())
	case c.Target != "":
		return fmt.Sprintf("precondition %d (%s %s %s) failed", idx, c.Target, c.Operator, c.Value.String())
	default:
		return fmt.Sprintf("precondition %d (%s %s) failed", idx, c.Operator, c.Value.String())
	}
}
