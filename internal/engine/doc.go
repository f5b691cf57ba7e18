// Package engine runs crafting guides.
//
// Two pieces live here. StepExecutor interprets one guide step (linear,
// conditional, branch or loop) against an item, threading the running item
// and the execution log through nested steps. Manager owns the guide store
// and layers CRUD, step editing, validation, import/export and
// run-to-completion on top of the step executor.
//
// EXECUTION MODEL:
//
// Synchronous and single-threaded. The caller drives a run one step at a
// time through Manager.ExecuteNextStep, or lets Manager.ExecuteGuide loop
// until the guide ends, a step fails or the step budget runs out. Nothing
// runs in the background.
//
// Each ExecutionState is an independent value owned by whoever runs the
// guide. Guide definitions are read-only during a run.
//
// Items are never edited in place: every action yields a new item value
// and history entries hold deep copies taken before and after.
//
// Step-level failures (precondition not met, no matching branch, failing
// loop body, unknown step type) come back as StepResult{Success: false}
// rather than Go errors. Errors are reserved for the caller's own mistakes:
// an unknown guide id, an unknown step id, an invalid import.
//
// ORDERING:
//
// History entries carry a wall timestamp from the injected Clock and a
// strictly increasing seq from a Sequence. Ordering uses seq, never the
// timestamp.
package engine
