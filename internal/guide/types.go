// Package guide defines crafting guides: ordered step programs that take a
// starting item toward a target item.
//
// Root-level steps run in order. Nesting only happens inside conditional,
// branch and loop steps. This package holds the data model, structural
// validation, the share envelope and the guide codec; running guides lives
// in the engine package.
package guide

import (
	"time"

	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/item"
)

// StepType discriminates Step variants.
type StepType string

const (
	StepLinear      StepType = "linear"
	StepConditional StepType = "conditional"
	StepBranch      StepType = "branch"
	StepLoop        StepType = "loop"
)

// IsKnown reports whether t is one of the four step variants.
func (t StepType) IsKnown() bool {
	switch t {
	case StepLinear, StepConditional, StepBranch, StepLoop:
		return true
	}
	return false
}

// DefaultMaxIterations caps a loop step that does not set MaxIterations.
const DefaultMaxIterations = 10

// Step is one node of a guide program. Which fields are read depends on
// Type:
//
//	linear       ActionID
//	conditional  Condition, TrueStep, FalseStep
//	branch       Branches (first match wins)
//	loop         Condition, Steps, MaxIterations
type Step struct {
	ID            string               `json:"id" yaml:"id"`
	Type          StepType             `json:"type" yaml:"type"`
	Description   string               `json:"description,omitempty" yaml:"description,omitempty"`
	ActionID      string               `json:"actionId,omitempty" yaml:"actionId,omitempty"`
	Condition     *condition.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	TrueStep      *Step                `json:"trueStep,omitempty" yaml:"trueStep,omitempty"`
	FalseStep     *Step                `json:"falseStep,omitempty" yaml:"falseStep,omitempty"`
	Branches      []Branch             `json:"branches,omitempty" yaml:"branches,omitempty"`
	Steps         []Step               `json:"steps,omitempty" yaml:"steps,omitempty"`
	MaxIterations int                  `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty"`
}

// Branch is one arm of a branch step.
type Branch struct {
	Condition condition.Condition `json:"condition" yaml:"condition"`
	Steps     []Step              `json:"steps" yaml:"steps"`
	Label     string              `json:"label,omitempty" yaml:"label,omitempty"`
}

// CraftGuide is an ordered crafting plan.
type CraftGuide struct {
	ID            string             `json:"id,omitempty" yaml:"id,omitempty"`
	Title         string             `json:"title" yaml:"title"`
	Description   string             `json:"description" yaml:"description"`
	Author        string             `json:"author" yaml:"author"`
	Version       string             `json:"version" yaml:"version"`
	CreatedAt     time.Time          `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" yaml:"updatedAt"`
	StartingItem  *item.Item         `json:"startingItem,omitempty" yaml:"startingItem,omitempty"`
	TargetItem    *item.Item         `json:"targetItem,omitempty" yaml:"targetItem,omitempty"`
	Steps         []Step             `json:"steps" yaml:"steps"`
	EstimatedCost map[string]float64 `json:"estimatedCost,omitempty" yaml:"estimatedCost,omitempty"`
	SuccessRate   *float64           `json:"successRate,omitempty" yaml:"successRate,omitempty"`
	IsPublic      bool               `json:"isPublic" yaml:"isPublic"`
	ShareID       string             `json:"shareId,omitempty" yaml:"shareId,omitempty"`
	Tags          []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Linear builds a linear step.
func Linear(id, actionID, description string) Step {
	return Step{ID: id, Type: StepLinear, ActionID: actionID, Description: description}
}

// Conditional builds a conditional step.
func Conditional(id string, c condition.Condition, whenTrue, whenFalse Step) Step {
	return Step{ID: id, Type: StepConditional, Condition: &c, TrueStep: &whenTrue, FalseStep: &whenFalse}
}

// BranchStep builds a branch step.
func BranchStep(id string, branches ...Branch) Step {
	return Step{ID: id, Type: StepBranch, Branches: branches}
}

// Loop builds a loop step. maxIterations of 0 means DefaultMaxIterations.
func Loop(id string, c condition.Condition, maxIterations int, steps ...Step) Step {
	return Step{ID: id, Type: StepLoop, Condition: &c, Steps: steps, MaxIterations: maxIterations}
}

// Copy returns a deep copy of g.
func Copy(g CraftGuide) CraftGuide {
	dup, err := item.DeepCopy(g)
	if err != nil {
		// Guides hold only maps, slices, pointers, strings, times and Values.
		panic("guide: deep copy: " + err.Error())
	}
	return dup.(CraftGuide)
}

// CopyStep returns a deep copy of s.
func CopyStep(s Step) Step {
	dup, err := item.DeepCopy(s)
	if err != nil {
		panic("guide: deep copy step: " + err.Error())
	}
	return dup.(Step)
}

// Walk calls fn for every step of steps in depth-first order, including
// nested steps. path is the field path of the step. Returning false from fn
// skips the step's children.
func Walk(steps []Step, fn func(path string, s Step) bool) {
	walk("steps", steps, fn, map[*Step]bool{})
}

func walk(prefix string, steps []Step, fn func(string, Step) bool, active map[*Step]bool) {
	for i := range steps {
		walkStep(indexPath(prefix, i), &steps[i], fn, active)
	}
}

func walkStep(path string, s *Step, fn func(string, Step) bool, active map[*Step]bool) {
	// A step reachable from itself through pointers is visited once.
	if active[s] {
		return
	}
	if !fn(path, *s) {
		return
	}
	active[s] = true
	defer delete(active, s)

	if s.TrueStep != nil {
		walkStep(path+".trueStep", s.TrueStep, fn, active)
	}
	if s.FalseStep != nil {
		walkStep(path+".falseStep", s.FalseStep, fn, active)
	}
	for i := range s.Branches {
		walk(indexPath(path+".branches", i)+".steps", s.Branches[i].Steps, fn, active)
	}
	walk(path+".steps", s.Steps, fn, active)
}
