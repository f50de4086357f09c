// Package harness runs quest scenarios end to end against an in-memory world
// and an in-memory SQLite store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: wolfhunt
//	description: "Killing three wolves completes the hunt"
//	quests:
//	  - quests/wolfhunt.cue
//	player:
//	  uid: p1
//	  inventory:
//	    - { code: "game:bread", amount: 2 }
//	steps:
//	  - accept: wolfhunt
//	    giver: trader
//	  - kill: wolf-grey
//	  - tick: 1
//	  - complete: wolfhunt
//	  - accept: wolfhunt
//	    error: "already completed"
//	assertions:
//	  - type: completed
//	    quests: [wolfhunt]
//	  - type: inventory
//	    code: "game:gear-rusty"
//	    amount: 2
//
// Quest paths are relative to the scenario file. Inline CUE may be given in
// source instead of, or in addition to, quest files.
//
// # Steps
//
// Each step sets exactly one of accept, complete, abandon, tick, move, kill,
// interact, give, storm or hour. A step fails unless its error matches: no
// error when error is empty, otherwise an error containing the text.
//
// # Assertion Types
//
//   - active: the active quest ids equal quests (order ignored)
//   - completed: every id in quests is completed
//   - attr: the player attribute key formats as value
//   - notified: some notification contains text
//   - inventory: the player holds exactly amount of code
//
// # Determinism
//
// The clock starts at a fixed instant and advances one tick interval per
// tick, instance ids are sequential and the reward rng has a fixed seed, so
// the trace is stable enough for golden comparison.
package harness
