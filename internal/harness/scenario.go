package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Scenario defines one crafting run and what must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed seeds the random source. Ignored when Rolls is set.
	Seed uint64 `yaml:"seed,omitempty"`

	// Rolls scripts every random draw. The script restarts when exhausted.
	Rolls []float64 `yaml:"rolls,omitempty"`

	// Catalog is an optional CUE action catalog registered next to the
	// built-in actions. Relative paths resolve against the scenario file.
	Catalog string `yaml:"catalog,omitempty"`

	// MaxSteps is the step budget. 0 means the engine default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Item is the starting item. A missing id is assigned.
	Item item.Item `yaml:"item"`

	// Guide is the inline guide. GuideFile loads one instead (JSON, YAML or
	// a share envelope).
	Guide     *guide.CraftGuide `yaml:"guide,omitempty"`
	GuideFile string            `yaml:"guide_file,omitempty"`

	// Assertions validate the run.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the trace or the final item.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the action id (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Step narrows trace_contains to actions run by this step id, and names
	// the top-level step for step_result.
	Step string `yaml:"step,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of runs (trace_count).
	Count int `yaml:"count,omitempty"`

	// Success is the expected outcome (run_success, step_result).
	Success *bool `yaml:"success,omitempty"`

	// Message must be a substring of the step message (step_result).
	Message string `yaml:"message,omitempty"`

	// Condition must hold on the final item (final_item). Target and Value
	// are shorthand for an equals condition.
	Condition *condition.Condition `yaml:"condition,omitempty"`
	Target    string               `yaml:"target,omitempty"`
	Value     ir.Value             `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertRunSuccess    = "run_success"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertStepResult    = "step_result"
	AssertFinalItem     = "final_item"
)

// LoadScenario reads and parses a scenario YAML file. Catalog and guide
// paths resolve against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so typos
// surface instead of being ignored.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Catalog = resolve(baseDir, scenario.Catalog)
	scenario.GuideFile = resolve(baseDir, scenario.GuideFile)

	if scenario.Guide == nil && scenario.GuideFile != "" {
		raw, err := os.ReadFile(scenario.GuideFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read guide file: %w", err)
		}
		dec, err := guide.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse guide file: %w", err)
		}
		scenario.Guide = &dec.Guide
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Guide == nil {
		return fmt.Errorf("guide or guide_file is required")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	for i, r := range s.Rolls {
		if r < 0 || r >= 1 {
			return fmt.Errorf("rolls[%d]: %v outside [0, 1)", i, r)
		}
	}
	if s.Catalog != "" {
		if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", s.Catalog)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRunSuccess:
		if a.Success == nil {
			return fmt.Errorf("assertions[%d]: success is required for run_success", index)
		}
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertStepResult:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for step_result", index)
		}
	case AssertFinalItem:
		if a.Condition == nil && a.Target == "" {
			return fmt.Errorf("assertions[%d]: condition or target is required for final_item", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
