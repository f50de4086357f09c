// Package engine drives quest evaluation.
//
// Single-writer loop:
// Host goroutines submit events with Driver.Enqueue. Driver.Run is the only
// goroutine that evaluates objectives, runs actions and mutates player state.
// It drains the queue in FIFO order and calls Tick on every TickInterval.
// Hosts that already run a simulation thread may instead call Tick and the
// On* hooks directly from that thread.
//
// Per tick, for every connected player and every active quest, objectives
// are visited in definition order:
//  1. tick-sensitive objectives (walk distance, storms, waypoints) advance
//     their trackers and are checked for completion;
//  2. passive objectives are re-checked every SweepEveryTicks ticks;
//  3. quests marked autoComplete are completed once every objective holds.
//
// An objective whose gate (time of day, land claim) is closed is skipped
// for that tick or event.
//
// Completion effects go through Trigger, which fires each objective's
// onComplete at most once per acceptance.
//
// Active records whose definition has disappeared are removed and saved on
// the tick that finds them. The warning is throttled per quest.
package engine
