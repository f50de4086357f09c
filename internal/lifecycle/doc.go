// Package lifecycle moves a player's quests through
// NotAccepted -> Active -> Completed.
//
// Manager owns the per-player quest logs (cached, loaded and saved through a
// Repository) and implements action.QuestController so actions can accept,
// complete and reset quests re-entrantly.
//
// Like the rest of the engine, a Manager is driven from a single goroutine
// and does no locking of its own.
package lifecycle
