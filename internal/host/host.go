// Package host declares the narrow surface the engine needs from the game
// host. The host owns entities, inventories, the world clock and player
// attribute trees; the engine only reads and mutates them through these
// interfaces.
package host

import "github.com/roach88/quester/internal/attr"

// MovementState is the subset of player physics the walk tracker inspects.
type MovementState struct {
	Controlled bool // the player is steering (not dead, sleeping or in a cutscene)
	OnGround   bool
	Swimming   bool
	Flying     bool
	Mounted    bool
}

// CanAccumulateWalk reports whether displacement this tick counts as walking.
func (m MovementState) CanAccumulateWalk() bool {
	if !m.Controlled || m.Flying || m.Mounted {
		return false
	}
	return m.OnGround || m.Swimming
}

// Player is a connected player as the engine sees it.
type Player interface {
	UID() string
	Name() string
	Position() Vec3
	Movement() MovementState
	Attributes() attr.Store
	Inventory() Inventory
	Worn() []ItemStack
}

// Inventory is a player's carried items.
type Inventory interface {
	Stacks() []ItemStack
	// Give inserts as much of stack as fits and returns the quantity left over.
	Give(stack ItemStack) (leftover int)
	// Take removes up to qty items matching pattern and returns how many were removed.
	Take(pattern string, qty int) int
}

// Entity is a live creature in the world.
type Entity interface {
	ID() int64
	Code() string
	Position() Vec3
	Attributes() attr.Store
}

// World resolves players, entities and content codes and exposes the few
// world facts objectives depend on.
type World interface {
	Player(uid string) (Player, bool)
	Players() []Player
	Entity(id int64) (Entity, bool)

	ItemExists(code string) bool
	EntityTypeExists(code string) bool
	SpawnItem(stack ItemStack, pos Vec3) error
	SpawnEntity(code string, pos Vec3) (Entity, error)

	// HourOfDay returns the in-game hour in [0, 24).
	HourOfDay() float64
	StormActive() bool
	// ClaimAt returns the name of the land claim covering pos.
	ClaimAt(pos Vec3) (string, bool)
}

// Notifier sends one-way messages to a player.
type Notifier interface {
	Notify(p Player, text string)
}

// Localizer resolves a language key. Unknown keys come back unchanged.
type Localizer interface {
	Lookup(key string, args ...any) string
}

// JournalEntry is one lore entry in a player's journal.
type JournalEntry struct {
	LoreCode string
	Title    string
	Text     string
}

// Journal is the part of the host journal the engine writes to.
type Journal interface {
	AddEntry(playerUID string, e JournalEntry)
	Entries(playerUID, loreCode string) []JournalEntry
}
