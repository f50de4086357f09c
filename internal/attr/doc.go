// Package attr models the per-player attribute store the host owns.
//
// The host replicates and saves a schemaless key/value tree per player. The
// engine treats it as its durable state substrate: counters, flags and
// positions live under keys derived from (feature, quest, objective, slot,
// field). Key derivation is injective, so two different tuples never share a
// key and concurrent quests never contend on the same entry.
//
// Raw string keys are kept for save-format compatibility; Key is the typed
// view over them.
package attr
