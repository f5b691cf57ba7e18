// Package condition evaluates boolean predicate trees against items.
//
// A Condition is plain data. The closed operator set (equals, notEquals,
// greaterThan, lessThan, contains, hasModifier, hasProperty, and, or, not)
// is interpreted directly; any other operator is dispatched to a custom
// evaluator registered by name. Referencing an unregistered name is a
// configuration error, not a false result.
package condition

import (
	"github.com/roach88/craftforge/internal/ir"
)

// Operator names a condition operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpContains    Operator = "contains"
	OpHasModifier Operator = "hasModifier"
	OpHasProperty Operator = "hasProperty"
	OpAnd         Operator = "and"
	OpOr          Operator = "or"
	OpNot         Operator = "not"

	// OpCustom is the conventional operator for nodes that name a
	// custom evaluator. Any operator outside the closed set behaves the same.
	OpCustom Operator = "custom"
)

// IsBuiltin reports whether op belongs to the closed operator set.
func (op Operator) IsBuiltin() bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains,
		OpHasModifier, OpHasProperty, OpAnd, OpOr, OpNot:
		return true
	}
	return false
}

// Condition is one node of a predicate tree.
type Condition struct {
	Operator        Operator    `json:"operator" yaml:"operator"`
	Target          string      `json:"target,omitempty" yaml:"target,omitempty"`
	Value           ir.Value    `json:"value,omitzero" yaml:"value,omitempty"`
	Conditions      []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	CustomEvaluator string      `json:"customEvaluator,omitempty" yaml:"customEvaluator,omitempty"`
}

// EvaluatorName returns the custom evaluator a non-builtin node dispatches
// to: CustomEvaluator when set, otherwise the operator itself.
func (c Condition) EvaluatorName() string {
	if c.CustomEvaluator != "" {
		return c.CustomEvaluator
	}
	return string(c.Operator)
}

// Equals builds an equals node.
func Equals(target string, value ir.Value) Condition {
	return Condition{Operator: OpEquals, Target: target, Value: value}
}

// NotEquals builds a notEquals node.
func NotEquals(target string, value ir.Value) Condition {
	return Condition{Operator: OpNotEquals, Target: target, Value: value}
}

// GreaterThan builds a greaterThan node.
func GreaterThan(target string, value ir.Value) Condition {
	return Condition{Operator: OpGreaterThan, Target: target, Value: value}
}

// LessThan builds a lessThan node.
func LessThan(target string, value ir.Value) Condition {
	return Condition{Operator: OpLessThan, Target: target, Value: value}
}

// Contains builds a contains node.
func Contains(target string, value ir.Value) Condition {
	return Condition{Operator: OpContains, Target: target, Value: value}
}

// HasModifier builds a hasModifier node.
func HasModifier(name string) Condition {
	return Condition{Operator: OpHasModifier, Value: ir.String(name)}
}

// HasProperty builds a hasProperty node.
func HasProperty(name string) Condition {
	return Condition{Operator: OpHasProperty, Value: ir.String(name)}
}

// And builds a conjunction.
func And(conds ...Condition) Condition {
	return Condition{Operator: OpAnd, Conditions: conds}
}

// Or builds a disjunction.
func Or(conds ...Condition) Condition {
	return Condition{Operator: OpOr, Conditions: conds}
}

// Not negates c.
func Not(c Condition) Condition {
	return Condition{Operator: OpNot, Conditions: []Condition{c}}
}

// Custom builds a node dispatched to the named evaluator.
func Custom(name, target string, value ir.Value) Condition {
	return Condition{Operator: OpCustom, Target: target, Value: value, CustomEvaluator: name}
}
