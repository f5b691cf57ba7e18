package engine

// DefaultMaxSteps is the step budget of one ExecuteGuide run.
const DefaultMaxSteps = 100

// QuotaEnforcer counts executed steps for one guide run and enforces the
// step budget.
//
// Each run has its own QuotaEnforcer. The budget is checked before every
// step, so a run records at most maxSteps step results.
//
// This stops guides that never finish, for example a loop step whose
// condition stays true and keeps the cursor parked on itself.
type QuotaEnforcer struct {
	maxSteps int // Maximum allowed steps for this run
	current  int // Current step count
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{
		maxSteps: maxSteps,
		current:  0,
	}
}

// Check increments the step counter and validates against the limit.
//
// Returns a STEP_BUDGET_EXCEEDED RuntimeError if the budget is exceeded.
func (q *QuotaEnforcer) Check(guideID string) error {
	q.current++
	if q.current > q.maxSteps {
		return NewBudgetError(guideID, q.current, q.maxSteps)
	}
	return nil
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}
