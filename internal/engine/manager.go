package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
	"github.com/roach88/craftforge/internal/store"
)

// Manager owns the guide store and runs guides.
//
// Editing a guide while it is being run is not supported; runs read the
// guide from the store on every step.
type Manager struct {
	actions  ActionRegistry
	store    store.GuideStore
	steps    *StepExecutor
	clock    Clock
	ids      ident.Generator
	maxSteps int
	logger   *slog.Logger
}

// NewManager creates a manager over actions.
func NewManager(actions ActionRegistry, opts ...Option) *Manager {
	o := buildOptions(opts)
	return &Manager{
		actions:  actions,
		store:    o.store,
		steps:    newStepExecutor(actions, o),
		clock:    o.clock,
		ids:      o.ids,
		maxSteps: o.maxSteps,
		logger:   o.logger,
	}
}

// StepExecutor returns the step executor the manager runs steps with.
func (m *Manager) StepExecutor() *StepExecutor { return m.steps }

// GuidePatch holds the guide fields to change. Nil fields are left alone.
type GuidePatch struct {
	Title         *string
	Description   *string
	Author        *string
	Version       *string
	StartingItem  *item.Item
	TargetItem    *item.Item
	Steps         []guide.Step
	EstimatedCost map[string]float64
	SuccessRate   *float64
	IsPublic      *bool
	Tags          []string
}

// StepPatch holds the step fields to change. The step id and type are
// never changed.
type StepPatch struct {
	Description   *string
	ActionID      *string
	Condition     *condition.Condition
	TrueStep      *guide.Step
	FalseStep     *guide.Step
	Branches      []guide.Branch
	Steps         []guide.Step
	MaxIterations *int
}

// CreateGuide stores a copy of g under a fresh id with fresh timestamps and
// returns it. Steps without an id get one.
func (m *Manager) CreateGuide(g guide.CraftGuide) guide.CraftGuide {
	created := guide.Copy(g)
	created.ID = m.ids.NewID()
	now := m.clock.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Steps == nil {
		created.Steps = []guide.Step{}
	}
	m.assignStepIDs(created.Steps)

	m.store.Put(created)
	m.logger.Info("guide created", "guide", created.ID, "title", created.Title, "steps", len(created.Steps))
	return created
}

// GetGuide returns the guide with the given id.
func (m *Manager) GetGuide(id string) (guide.CraftGuide, bool) {
	return m.store.Get(id)
}

// ListGuides returns every stored guide, oldest first.
func (m *Manager) ListGuides() []guide.CraftGuide {
	return m.store.List()
}

// DeleteGuide removes the guide with the given id and reports whether it
// existed.
func (m *Manager) DeleteGuide(id string) bool {
	deleted := m.store.Delete(id)
	if deleted {
		m.logger.Info("guide deleted", "guide", id)
	}
	return deleted
}

// UpdateGuide merges patch into the guide. The id and creation time are
// kept; updatedAt is refreshed.
func (m *Manager) UpdateGuide(id string, patch GuidePatch) (guide.CraftGuide, error) {
	return m.edit(id, func(g *guide.CraftGuide) error {
		setIf(&g.Title, patch.Title)
		setIf(&g.Description, patch.Description)
		setIf(&g.Author, patch.Author)
		setIf(&g.Version, patch.Version)
		setIf(&g.IsPublic, patch.IsPublic)
		if patch.StartingItem != nil {
			cp := item.Copy(*patch.StartingItem)
			g.StartingItem = &cp
		}
		if patch.TargetItem != nil {
			cp := item.Copy(*patch.TargetItem)
			g.TargetItem = &cp
		}
		if patch.Steps != nil {
			g.Steps = copySteps(patch.Steps)
			m.assignStepIDs(g.Steps)
		}
		if patch.EstimatedCost != nil {
			g.EstimatedCost = maps.Clone(patch.EstimatedCost)
		}
		if patch.SuccessRate != nil {
			rate := *patch.SuccessRate
			g.SuccessRate = &rate
		}
		if patch.Tags != nil {
			g.Tags = slices.Clone(patch.Tags)
		}
		return nil
	})
}

// AddStep inserts s at position, or appends it when position is negative or
// past the end. A step without an id gets one.
func (m *Manager) AddStep(guideID string, s guide.Step, position int) (guide.CraftGuide, error) {
	return m.edit(guideID, func(g *guide.CraftGuide) error {
		added := []guide.Step{guide.CopyStep(s)}
		m.assignStepIDs(added)
		if position < 0 || position > len(g.Steps) {
			position = len(g.Steps)
		}
		g.Steps = slices.Insert(g.Steps, position, added[0])
		return nil
	})
}

// RemoveStep removes the root-level step with the given id.
func (m *Manager) RemoveStep(guideID, stepID string) (guide.CraftGuide, error) {
	return m.edit(guideID, func(g *guide.CraftGuide) error {
		idx := stepIndex(g.Steps, stepID)
		if idx < 0 {
			return NewStepNotFoundError(guideID, stepID)
		}
		g.Steps = slices.Delete(g.Steps, idx, idx+1)
		return nil
	})
}

// UpdateStep merges patch into the root-level step with the given id,
// preserving its id and type.
func (m *Manager) UpdateStep(guideID, stepID string, patch StepPatch) (guide.CraftGuide, error) {
	return m.edit(guideID, func(g *guide.CraftGuide) error {
		idx := stepIndex(g.Steps, stepID)
		if idx < 0 {
			return NewStepNotFoundError(guideID, stepID)
		}
		s := &g.Steps[idx]
		setIf(&s.Description, patch.Description)
		setIf(&s.ActionID, patch.ActionID)
		setIf(&s.MaxIterations, patch.MaxIterations)
		if patch.Condition != nil {
			c := *patch.Condition
			s.Condition = &c
		}
		if patch.TrueStep != nil {
			ts := guide.CopyStep(*patch.TrueStep)
			s.TrueStep = &ts
		}
		if patch.FalseStep != nil {
			fs := guide.CopyStep(*patch.FalseStep)
			s.FalseStep = &fs
		}
		if patch.Branches != nil {
			s.Branches = make([]guide.Branch, len(patch.Branches))
			for i, b := range patch.Branches {
				s.Branches[i] = guide.Branch{Condition: b.Condition, Steps: copySteps(b.Steps), Label: b.Label}
			}
		}
		if patch.Steps != nil {
			s.Steps = copySteps(patch.Steps)
		}
		return nil
	})
}

// MoveStep moves the root-level step with the given id to index to,
// clamped to the valid range.
func (m *Manager) MoveStep(guideID, stepID string, to int) (guide.CraftGuide, error) {
	return m.edit(guideID, func(g *guide.CraftGuide) error {
		from := stepIndex(g.Steps, stepID)
		if from < 0 {
			return NewStepNotFoundError(guideID, stepID)
		}
		to = max(0, min(to, len(g.Steps)-1))
		s := g.Steps[from]
		g.Steps = slices.Delete(g.Steps, from, from+1)
		g.Steps = slices.Insert(g.Steps, to, s)
		return nil
	})
}

// edit loads a guide, applies fn and stores the result with a fresh
// updatedAt.
func (m *Manager) edit(id string, fn func(*guide.CraftGuide) error) (guide.CraftGuide, error) {
	g, ok := m.store.Get(id)
	if !ok {
		return guide.CraftGuide{}, NewGuideNotFoundError(id)
	}
	if err := fn(&g); err != nil {
		return guide.CraftGuide{}, err
	}
	g.ID = id
	g.UpdatedAt = m.clock.Now()
	m.store.Put(g)
	m.logger.Debug("guide updated", "guide", id)
	return g, nil
}

// assignStepIDs gives every step in the tree that lacks an id a fresh one.
func (m *Manager) assignStepIDs(steps []guide.Step) {
	for i := range steps {
		s := &steps[i]
		if s.ID == "" {
			s.ID = m.ids.NewID()
		}
		if s.TrueStep != nil {
			one := []guide.Step{*s.TrueStep}
			m.assignStepIDs(one)
			s.TrueStep = &one[0]
		}
		if s.FalseStep != nil {
			one := []guide.Step{*s.FalseStep}
			m.assignStepIDs(one)
			s.FalseStep = &one[0]
		}
		for j := range s.Branches {
			m.assignStepIDs(s.Branches[j].Steps)
		}
		m.assignStepIDs(s.Steps)
	}
}

// ValidateGuide checks g's structure and that every linear step names a
// registered action.
func (m *Manager) ValidateGuide(g guide.CraftGuide) ir.ValidationResult {
	return guide.Validate(g, m.actions.HasAction)
}

// CreateExecutionState starts a run of the guide on a copy of start.
func (m *Manager) CreateExecutionState(guideID string, start item.Item) (ExecutionState, error) {
	if _, ok := m.store.Get(guideID); !ok {
		return ExecutionState{}, NewGuideNotFoundError(guideID)
	}
	return NewExecutionState(guideID, start), nil
}

// ExecuteNextStep runs the step under the cursor.
//
// When the cursor is already past the last step nothing runs and the
// result has Done set. On success the state's item is replaced and the
// cursor advances by one, unless the result names a next index or asks to
// keep looping, in which case the cursor follows that instead. On failure
// the state's item and cursor are left as they were.
func (m *Manager) ExecuteNextStep(state *ExecutionState) (StepResult, error) {
	g, ok := m.store.Get(state.GuideID)
	if !ok {
		return StepResult{}, NewGuideNotFoundError(state.GuideID)
	}
	idx := state.CurrentStepIndex
	if idx >= len(g.Steps) {
		return StepResult{Success: true, Done: true, Item: state.CurrentItem, Message: "Guide completed"}, nil
	}
	if idx < 0 {
		return StepResult{}, &RuntimeError{
			Code:    ErrCodeStepNotFound,
			Message: fmt.Sprintf("step index %d out of range", idx),
			GuideID: state.GuideID,
		}
	}
	if state.Variables == nil {
		state.Variables = ir.Object{}
	}

	s := g.Steps[idx]
	r := m.steps.Execute(s, state.CurrentItem, state)
	if !r.Success {
		m.logger.Info("guide step failed", "guide", g.ID, "step", s.ID, "index", idx, "message", r.Message)
		return r, nil
	}

	state.CurrentItem = r.Item
	switch {
	case r.NextStepIndex != nil:
		state.CurrentStepIndex = *r.NextStepIndex
	case r.ShouldLoop:
		// hold the cursor on the loop step
	default:
		state.CurrentStepIndex++
	}
	m.logger.Debug("guide step executed", "guide", g.ID, "step", s.ID, "index", idx, "next", state.CurrentStepIndex)
	return r, nil
}

// GuideRun is the outcome of ExecuteGuide.
type GuideRun struct {
	GuideID string         `json:"guideId"`
	Success bool           `json:"success"`
	Results []StepResult   `json:"results"`
	State   ExecutionState `json:"state"`
	// BudgetExhausted is set when the run stopped at the step budget.
	BudgetExhausted bool `json:"budgetExhausted,omitempty"`
}

// ExecuteGuide runs the guide from its first step on a copy of start until
// the cursor passes the last step, a step fails or the step budget is spent.
// Success is true only when the cursor reached the end.
func (m *Manager) ExecuteGuide(guideID string, start item.Item) (GuideRun, error) {
	state, err := m.CreateExecutionState(guideID, start)
	if err != nil {
		return GuideRun{}, err
	}
	g, _ := m.store.Get(guideID)

	run := GuideRun{GuideID: guideID, Results: []StepResult{}}
	quota := NewQuotaEnforcer(m.maxSteps)
	for state.CurrentStepIndex < len(g.Steps) {
		if err := quota.Check(guideID); err != nil {
			m.logger.Warn("guide run stopped", "guide", guideID, "steps", quota.Current(), "max_steps", quota.MaxSteps(), "error", err)
			run.BudgetExhausted = true
			break
		}
		r, err := m.ExecuteNextStep(&state)
		if err != nil {
			return GuideRun{}, err
		}
		run.Results = append(run.Results, r)
		if !r.Success {
			break
		}
	}

	run.State = state
	run.Success = state.CurrentStepIndex >= len(g.Steps)
	m.logger.Info("guide run finished", "guide", guideID, "success", run.Success, "steps", len(run.Results))
	return run, nil
}

// ExportGuide serializes the guide as JSON.
func (m *Manager) ExportGuide(id string) ([]byte, error) {
	g, ok := m.store.Get(id)
	if !ok {
		return nil, NewGuideNotFoundError(id)
	}
	return guide.Export(g)
}

// ImportGuide parses a guide or share envelope (JSON or YAML), fills in
// missing step ids as CreateGuide does, validates it and stores it under a
// fresh id with fresh timestamps. An invalid guide
// fails with an INVALID_GUIDE error listing every finding.
func (m *Manager) ImportGuide(data []byte) (guide.CraftGuide, error) {
	dec, err := guide.Decode(data)
	if err != nil {
		return guide.CraftGuide{}, fmt.Errorf("import guide: %w", err)
	}
	g := dec.Guide
	m.assignStepIDs(g.Steps)

	if res := m.ValidateGuide(g); !res.IsValid {
		return guide.CraftGuide{}, NewInvalidGuideError(g.ID, res.Errors)
	}

	g.ID = m.ids.NewID()
	now := m.clock.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Steps == nil {
		g.Steps = []guide.Step{}
	}

	m.store.Put(g)
	m.logger.Info("guide imported", "guide", g.ID, "shared", dec.Envelope != nil)
	return guide.Copy(g), nil
}

// ShareGuide wraps the guide in a share envelope stamped with the current
// time.
func (m *Manager) ShareGuide(id string) (guide.ShareEnvelope, error) {
	g, ok := m.store.Get(id)
	if !ok {
		return guide.ShareEnvelope{}, NewGuideNotFoundError(id)
	}
	return guide.NewShareEnvelope(g, m.clock.Now())
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func stepIndex(steps []guide.Step, id string) int {
	return slices.IndexFunc(steps, func(s guide.Step) bool { return s.ID == id })
}

func copySteps(steps []guide.Step) []guide.Step {
	out := make([]guide.Step, len(steps))
	for i, s := range steps {
		out[i] = guide.CopyStep(s)
	}
	return out
}
