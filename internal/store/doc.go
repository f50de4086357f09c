// Package store persists per-player quest logs in SQLite.
//
// Tables:
//   - players: one row per player ever saved
//   - active_quests: active records, ordered by acceptance
//   - completed_quests: completed quest ids with completion time
//   - player_attributes: snapshot of the player's attribute tree
//
// Save replaces a player's rows inside one transaction, so a crash never
// leaves half a log behind.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: player rows own their quest rows
//
// Archives (WriteArchive, ReadArchive) are zstd-compressed JSON lines with
// one record per player, for backups and moving players between servers.
package store
