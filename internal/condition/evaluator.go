package condition

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// CustomEvaluator decides a condition node outside the closed operator set.
type CustomEvaluator interface {
	Evaluate(c Condition, it item.Item, ctx ir.Object) (bool, error)
}

// EvaluatorFunc adapts a function to CustomEvaluator.
type EvaluatorFunc func(c Condition, it item.Item, ctx ir.Object) (bool, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(c Condition, it item.Item, ctx ir.Object) (bool, error) {
	return f(c, it, ctx)
}

// Evaluator interprets condition trees and owns the custom evaluator table.
//
// Registration is expected at setup time. Evaluator is not safe for
// concurrent Register calls; concurrent Evaluate calls are fine once setup
// is done.
type Evaluator struct {
	custom map[string]CustomEvaluator
	logger *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithoutBuiltins starts from an empty custom evaluator table.
func WithoutBuiltins() Option {
	return func(e *Evaluator) {
		clear(e.custom)
	}
}

// NewEvaluator creates an evaluator with the built-in custom evaluators
// registered.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		custom: make(map[string]CustomEvaluator),
		logger: slog.Default(),
	}
	for name, ce := range builtinEvaluators() {
		e.custom[name] = ce
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a named custom evaluator.
func (e *Evaluator) Register(name string, ce CustomEvaluator) error {
	if name == "" {
		return fmt.Errorf("register custom evaluator: empty name")
	}
	if _, exists := e.custom[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEvaluator, name)
	}
	e.custom[name] = ce
	return nil
}

// Lookup returns the named custom evaluator.
func (e *Evaluator) Lookup(name string) (CustomEvaluator, error) {
	ce, ok := e.custom[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEvaluatorNotFound, name)
	}
	return ce, nil
}

// Has reports whether name is registered.
func (e *Evaluator) Has(name string) bool {
	_, ok := e.custom[name]
	return ok
}

// Names returns the registered custom evaluator names, sorted.
func (e *Evaluator) Names() []string {
	return slices.Sorted(maps.Keys(e.custom))
}

// Evaluate decides c against it. ctx is passed through to custom evaluators
// and may be nil.
func (e *Evaluator) Evaluate(c Condition, it item.Item, ctx ir.Object) (bool, error) {
	switch c.Operator {
	case OpEquals, OpNotEquals:
		got, err := Resolve(c.Target, it)
		if err != nil {
			return false, err
		}
		eq := ir.LooseEqual(got, c.Value)
		if c.Operator == OpNotEquals {
			return !eq, nil
		}
		return eq, nil

	case OpGreaterThan, OpLessThan:
		got, err := Resolve(c.Target, it)
		if err != nil {
			return false, err
		}
		// NaN on either side makes both comparisons false.
		if c.Operator == OpGreaterThan {
			return got.ToNumber() > c.Value.ToNumber(), nil
		}
		return got.ToNumber() < c.Value.ToNumber(), nil

	case OpContains:
		got, err := Resolve(c.Target, it)
		if err != nil {
			return false, err
		}
		return got.Contains(c.Value), nil

	case OpHasModifier:
		return it.HasModifier(c.Value.String()), nil

	case OpHasProperty:
		return it.HasProperty(c.Value.String()), nil

	case OpAnd:
		for _, child := range c.Conditions {
			ok, err := e.Evaluate(child, it, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case OpOr:
		for _, child := range c.Conditions {
			ok, err := e.Evaluate(child, it, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case OpNot:
		if len(c.Conditions) == 0 {
			return true, nil
		}
		ok, err := e.Evaluate(c.Conditions[0], it, ctx)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}

	name := c.EvaluatorName()
	ce, ok := e.custom[name]
	if !ok {
		return false, fmt.Errorf("%w: %q (no custom evaluator %q registered)", ErrUnknownOperator, c.Operator, name)
	}
	result, err := ce.Evaluate(c, it, ctx)
	if err != nil {
		return false, fmt.Errorf("custom evaluator %s: %w", name, err)
	}
	e.logger.Debug("custom condition evaluated",
		"evaluator", name,
		"target", c.Target,
		"result", result,
	)
	return result, nil
}

// EvaluateAll reports whether every condition holds. An empty list holds.
func (e *Evaluator) EvaluateAll(conds []Condition, it item.Item, ctx ir.Object) (bool, error) {
	for i, c := range conds {
		ok, err := e.Evaluate(c, it, ctx)
		if err != nil {
			return false, fmt.Errorf("condition %d: %w", i, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
