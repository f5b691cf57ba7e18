package compiler

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/craftforge/internal/action"
)

// actionFields are the fields an action struct may carry.
var actionFields = []string{
	"name", "description", "category", "preconditions", "requirements",
	"outcomes", "customHandler", "tags", "isEnabled",
}

// CompileFile reads and compiles the catalog at path.
func CompileFile(path string) ([]action.CraftAction, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return CompileSource(path, src)
}

// CompileSource compiles catalog source. filename is used in positions.
func CompileSource(filename string, src []byte) ([]action.CraftAction, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCatalog(v)
}

// CompileCatalog compiles every action under the "action" struct of v, in
// declaration order. A catalog without actions compiles to an empty list.
func CompileCatalog(v cue.Value) ([]action.CraftAction, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	actions := []action.CraftAction{}
	actionVal := v.LookupPath(cue.ParsePath("action"))
	if !actionVal.Exists() {
		return actions, nil
	}

	iter, err := actionVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		a, err := CompileAction(iter.Value())
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// CompileAction parses one action struct. The id is the struct's label.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`action: scour: { name: "Orb of Scouring", ... }`)
//	a, err := CompileAction(v.LookupPath(cue.ParsePath("action.scour")))
func CompileAction(v cue.Value) (action.CraftAction, error) {
	if err := v.Err(); err != nil {
		return action.CraftAction{}, formatCUEError(err)
	}

	var id string
	if labels := v.Path().Selectors(); len(labels) > 0 {
		id = unquote(labels[len(labels)-1].String())
	}

	iter, err := v.Fields()
	if err != nil {
		return action.CraftAction{}, formatCUEError(err)
	}
	for iter.Next() {
		if !slices.Contains(actionFields, iter.Label()) {
			return action.CraftAction{}, &CompileError{
				Field:   fmt.Sprintf("action.%s.%s", id, iter.Label()),
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return action.CraftAction{}, &CompileError{
			Field:   fmt.Sprintf("action.%s.name", id),
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	if _, err := nameVal.String(); err != nil {
		return action.CraftAction{}, formatCUEError(err)
	}

	// Everything must be concrete before it can become data.
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return action.CraftAction{}, formatCUEError(err)
	}

	raw, err := v.MarshalJSON()
	if err != nil {
		return action.CraftAction{}, formatCUEError(err)
	}
	var a action.CraftAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return action.CraftAction{}, &CompileError{
			Field:   fmt.Sprintf("action.%s", id),
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	a.ID = id
	if a.Outcomes == nil {
		a.Outcomes = []action.Outcome{}
	}
	return a, nil
}

// unquote strips the quotes CUE keeps on labels that are not identifiers.
func unquote(label string) string {
	if len(label) >= 2 && label[0] == '"' && label[len(label)-1] == '"' {
		return label[1 : len(label)-1]
	}
	return label
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
