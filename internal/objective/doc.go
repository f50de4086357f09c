// Package objective implements the objective registry and the built-in
// objective evaluators.
//
// An evaluator answers two questions about a player: is the objective
// completable, and how far along is it. Both run on every tick and every
// relevant event, so they never fail: malformed arguments read as "not
// completable" with zero progress.
//
// Most evaluators only read state. The exceptions are deliberate:
//   - sequence advances its step pointer while being evaluated
//   - tickers (walkdistance, temporalstorm, reachwaypoint) accumulate state
//     in Tick
//   - listeners (killnear, randomkill, interactat, ...) count world events
//
// All state lives in the player's attribute store under keys derived from
// (quest, objective, slot, field); see package attr.
package objective
