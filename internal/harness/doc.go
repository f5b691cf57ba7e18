// Package harness runs crafting scenarios against a deterministic engine.
//
// A scenario pairs a starting item with a guide, runs the guide through a
// guide manager backed by a fresh action registry, and checks the run with
// assertions over the action trace and the final item.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scrap_to_cap
//	description: "Armourer's Scrap raises quality until the cap"
//	seed: 7                  # seeds the random source
//	rolls: [0.25, 0.9]       # scripted draws, replayed in a loop (overrides seed)
//	catalog: extra.cue       # optional CUE catalog, relative to the scenario file
//	max_steps: 100           # step budget (default 100)
//	item:
//	  baseType: Vaal Regalia
//	  itemLevel: 84
//	  rarity: normal
//	  quality: 17
//	guide:                   # inline guide, or guide_file: path/to/guide.yaml
//	  title: Scrap to cap
//	  steps:
//	    - id: s1
//	      type: loop
//	      condition: { operator: lessThan, target: item.quality, value: 20 }
//	      maxIterations: 5
//	      steps:
//	        - { id: s1a, type: linear, actionId: armourers_scrap }
//	assertions:
//	  - type: run_success
//	    success: true
//	  - type: trace_count
//	    action: armourers_scrap
//	    count: 3
//	  - type: final_item
//	    target: item.quality
//	    value: 20
//
// # Assertion Types
//
//   - run_success: the run reached the end of the guide (or did not)
//   - trace_contains: an action ran, optionally from a given step
//   - trace_order: actions first ran in the listed order
//   - trace_count: an action ran exactly N times
//   - step_result: the top-level step with the given id succeeded or failed,
//     optionally with a message containing a substring
//   - final_item: a condition holds on the final item
//
// # Deterministic Runs
//
// Every run uses sequential ids, a stepping clock and either a seeded or a
// scripted random source, so the same scenario always produces the same
// trace. RunWithGolden compares that trace with testdata/golden.
package harness
