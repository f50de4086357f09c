package app

import (
	"context"
	"errors"
	"slices"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// OfflineWorld is a host.World for administering players who are not
// connected to a game server. Players are rebuilt from their stored
// attribute snapshot. Items they receive are kept as pending deliveries
// and entities never exist.
type OfflineWorld struct {
	players map[string]*OfflinePlayer
	order   []string

	// Dropped collects items that would have been spawned in the world.
	Dropped []host.ItemStack
}

// NewOfflineWorld returns a world with no players attached.
func NewOfflineWorld() *OfflineWorld {
	return &OfflineWorld{players: make(map[string]*OfflinePlayer)}
}

// Attach adds a player rebuilt from vals.
func (w *OfflineWorld) Attach(uid string, vals map[string]attr.Value) *OfflinePlayer {
	t := attr.NewTree()
	t.Restore(vals)
	p := &OfflinePlayer{uid: uid, attrs: t, inv: &PendingInventory{}}
	if _, ok := w.players[uid]; !ok {
		w.order = append(w.order, uid)
	}
	w.players[uid] = p
	return p
}

// Player returns an attached player.
func (w *OfflineWorld) Player(uid string) (host.Player, bool) {
	p, ok := w.players[uid]
	if !ok {
		return nil, false
	}
	return p, true
}

// Players returns attached players in attach order.
func (w *OfflineWorld) Players() []host.Player {
	out := make([]host.Player, 0, len(w.order))
	for _, uid := range w.order {
		out = append(out, w.players[uid])
	}
	return out
}

// Entity always reports false.
func (w *OfflineWorld) Entity(int64) (host.Entity, bool) { return nil, false }

// ItemExists accepts every code; content is not loaded offline.
func (w *OfflineWorld) ItemExists(string) bool { return true }

// EntityTypeExists accepts every code.
func (w *OfflineWorld) EntityTypeExists(string) bool { return true }

// SpawnItem records stack in Dropped.
func (w *OfflineWorld) SpawnItem(stack host.ItemStack, _ host.Vec3) error {
	w.Dropped = append(w.Dropped, stack)
	return nil
}

// SpawnEntity always fails.
func (w *OfflineWorld) SpawnEntity(string, host.Vec3) (host.Entity, error) {
	return nil, errors.New("offline world cannot spawn entities")
}

// HourOfDay is fixed at noon.
func (w *OfflineWorld) HourOfDay() float64 { return 12 }

// StormActive is always false.
func (w *OfflineWorld) StormActive() bool { return false }

// ClaimAt finds no claims.
func (w *OfflineWorld) ClaimAt(host.Vec3) (string, bool) { return "", false }

// OfflinePlayer is a stored player outside the game.
type OfflinePlayer struct {
	uid   string
	attrs *attr.Tree
	inv   *PendingInventory
}

// UID returns the stored player id.
func (p *OfflinePlayer) UID() string { return p.uid }

// Name is the uid; names are not stored.
func (p *OfflinePlayer) Name() string { return p.uid }

// Position is the origin.
func (p *OfflinePlayer) Position() host.Vec3 { return host.Vec3{} }

// Movement is the zero state.
func (p *OfflinePlayer) Movement() host.MovementState { return host.MovementState{} }

// Attributes returns the restored snapshot.
func (p *OfflinePlayer) Attributes() attr.Store { return p.attrs }

// Inventory returns the pending deliveries.
func (p *OfflinePlayer) Inventory() host.Inventory { return p.inv }

// Worn is always empty.
func (p *OfflinePlayer) Worn() []host.ItemStack { return nil }

// Pending returns the items granted while offline.
func (p *OfflinePlayer) Pending() []host.ItemStack {
	return p.inv.Stacks()
}

// PendingInventory accepts every item and holds nothing to take.
type PendingInventory struct {
	stacks []host.ItemStack
}

// Stacks returns what was given so far.
func (inv *PendingInventory) Stacks() []host.ItemStack {
	return slices.Clone(inv.stacks)
}

// Give keeps the whole stack and never reports leftovers.
func (inv *PendingInventory) Give(stack host.ItemStack) int {
	inv.stacks = append(inv.stacks, stack)
	return 0
}

// Take removes nothing.
func (inv *PendingInventory) Take(string, int) int { return 0 }

// MessageLog is a host.Notifier that keeps what it was asked to send.
type MessageLog struct {
	Lines []string
}

// Notify appends "<uid>: <text>" to Lines.
func (m *MessageLog) Notify(p host.Player, text string) {
	m.Lines = append(m.Lines, p.UID()+": "+text)
}

// AttachOffline loads uid's attribute snapshot into w.
func (a *App) AttachOffline(ctx context.Context, w *OfflineWorld, uid string) (*OfflinePlayer, error) {
	vals, err := a.Store.LoadAttributes(ctx, uid)
	if err != nil {
		return nil, err
	}
	return w.Attach(uid, vals), nil
}
