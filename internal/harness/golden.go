package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// TraceSnapshot captures what a scenario run did, in canonical JSON for
// deterministic comparison.
type TraceSnapshot struct {
	ScenarioName    string        `json:"scenario_name"`
	Success         bool          `json:"success"`
	BudgetExhausted bool          `json:"budget_exhausted,omitempty"`
	Steps           []StepEvent   `json:"steps"`
	Actions         []ActionEvent `json:"actions"`
	Final           ItemSummary   `json:"final"`
}

// ItemSummary is the id-free part of the final item kept in snapshots.
type ItemSummary struct {
	Rarity      item.Rarity `json:"rarity"`
	Quality     int         `json:"quality"`
	IsCorrupted bool        `json:"is_corrupted"`
	Modifiers   []string    `json:"modifiers"`
	Sockets     int         `json:"sockets"`
}

// Summarize reduces it to an ItemSummary. Modifiers are listed by name in
// item order.
func Summarize(it item.Item) ItemSummary {
	names := make([]string, 0, len(it.Modifiers))
	for _, m := range it.Modifiers {
		names = append(names, m.Name)
	}
	return ItemSummary{
		Rarity:      it.Rarity,
		Quality:     it.Quality,
		IsCorrupted: it.IsCorrupted,
		Modifiers:   names,
		Sockets:     len(it.Sockets),
	}
}

// NewTraceSnapshot builds the snapshot of a result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName:    name,
		Success:         result.Success,
		BudgetExhausted: result.BudgetExhausted,
		Steps:           result.Steps,
		Actions:         result.Actions,
		Final:           Summarize(result.Final),
	}
}

// MarshalCanonical renders the snapshot as RFC 8785 canonical JSON.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	doc, err := ir.CanonicalDocument(s)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(doc)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := NewTraceSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
