// Package testutil provides an in-memory game host for tests and scenario
// runs: a world with players, entities, inventories, a recording notifier, a
// journal and a manual wall clock.
//
// Everything here is deterministic. Nothing is safe for concurrent use; the
// engine it backs is single-threaded.
package testutil
