package testutil

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// SpawnedItem records an item the engine dropped into the world.
type SpawnedItem struct {
	Stack host.ItemStack
	Pos   host.Vec3
}

// Claim is an axis-aligned land claim.
type Claim struct {
	Name     string
	Min, Max host.Vec3
}

// World is an in-memory host.World.
//
// Content lookups accept every code until RegisterItems or
// RegisterEntityTypes restricts them.
type World struct {
	Hour  float64
	Storm bool

	Claims []Claim

	// SpawnErr, when set, makes every spawn fail.
	SpawnErr error

	Spawned         []SpawnedItem
	SpawnedEntities []*Entity

	players     map[string]*Player
	order       []string
	entities    map[int64]*Entity
	nextID      int64
	items       map[string]bool
	entityTypes map[string]bool
}

// NewWorld returns an empty world at noon.
func NewWorld() *World {
	return &World{
		Hour:     12,
		players:  make(map[string]*Player),
		entities: make(map[int64]*Entity),
	}
}

// AddPlayer creates a connected player standing on the ground at the origin.
func (w *World) AddPlayer(uid string) *Player {
	p := &Player{
		uid:   uid,
		name:  uid,
		Move:  host.MovementState{Controlled: true, OnGround: true},
		Attrs: attr.NewTree(),
		Inv:   NewInventory(16),
	}
	w.players[uid] = p
	w.order = append(w.order, uid)
	return p
}

// RemovePlayer disconnects a player.
func (w *World) RemovePlayer(uid string) {
	delete(w.players, uid)
	w.order = slices.DeleteFunc(w.order, func(s string) bool { return s == uid })
}

// AddEntity places an entity in the world.
func (w *World) AddEntity(code string, pos host.Vec3) *Entity {
	w.nextID++
	e := &Entity{id: w.nextID, code: code, Pos: pos, Attrs: attr.NewTree()}
	w.entities[e.id] = e
	return e
}

// RegisterItems restricts ItemExists to the given codes (cumulative).
func (w *World) RegisterItems(codes ...string) {
	if w.items == nil {
		w.items = make(map[string]bool)
	}
	for _, c := range codes {
		w.items[c] = true
	}
}

// RegisterEntityTypes restricts EntityTypeExists to the given codes (cumulative).
func (w *World) RegisterEntityTypes(codes ...string) {
	if w.entityTypes == nil {
		w.entityTypes = make(map[string]bool)
	}
	for _, c := range codes {
		w.entityTypes[c] = true
	}
}

// Player returns a connected player.
func (w *World) Player(uid string) (host.Player, bool) {
	p, ok := w.players[uid]
	if !ok {
		return nil, false
	}
	return p, true
}

// Players returns connected players in join order.
func (w *World) Players() []host.Player {
	out := make([]host.Player, 0, len(w.order))
	for _, uid := range w.order {
		out = append(out, w.players[uid])
	}
	return out
}

// Entity returns a live entity.
func (w *World) Entity(id int64) (host.Entity, bool) {
	e, ok := w.entities[id]
	if !ok {
		return nil, false
	}
	return e, true
}

// ItemExists accepts everything until an item code is registered.
func (w *World) ItemExists(code string) bool {
	return w.items == nil || w.items[code]
}

// EntityTypeExists accepts everything until an entity type is registered.
func (w *World) EntityTypeExists(code string) bool {
	return w.entityTypes == nil || w.entityTypes[code]
}

// SpawnItem records the drop in Spawned.
func (w *World) SpawnItem(stack host.ItemStack, pos host.Vec3) error {
	if w.SpawnErr != nil {
		return w.SpawnErr
	}
	if stack.Quantity <= 0 {
		return errors.New("spawn item: empty stack")
	}
	w.Spawned = append(w.Spawned, SpawnedItem{Stack: stack, Pos: pos})
	return nil
}

// SpawnEntity adds a live entity of a known type.
func (w *World) SpawnEntity(code string, pos host.Vec3) (host.Entity, error) {
	if w.SpawnErr != nil {
		return nil, w.SpawnErr
	}
	if !w.EntityTypeExists(code) {
		return nil, fmt.Errorf("spawn entity: unknown type %q", code)
	}
	e := w.AddEntity(code, pos)
	w.SpawnedEntities = append(w.SpawnedEntities, e)
	return e, nil
}

// HourOfDay returns Hour.
func (w *World) HourOfDay() float64 { return w.Hour }

// StormActive returns Storm.
func (w *World) StormActive() bool { return w.Storm }

// ClaimAt returns the first claim containing pos.
func (w *World) ClaimAt(pos host.Vec3) (string, bool) {
	for _, c := range w.Claims {
		if pos.X >= c.Min.X && pos.X <= c.Max.X &&
			pos.Y >= c.Min.Y && pos.Y <= c.Max.Y &&
			pos.Z >= c.Min.Z && pos.Z <= c.Max.Z {
			return c.Name, true
		}
	}
	return "", false
}

// Player is an in-memory host.Player. Fields are exported so tests can
// steer position, movement and equipment directly.
type Player struct {
	uid  string
	name string

	Pos       host.Vec3
	Move      host.MovementState
	Attrs     *attr.Tree
	Inv       *Inventory
	WornItems []host.ItemStack
}

// UID returns the player id.
func (p *Player) UID() string { return p.uid }

// Name returns the display name.
func (p *Player) Name() string { return p.name }

// Position returns Pos.
func (p *Player) Position() host.Vec3 { return p.Pos }

// Movement returns Move.
func (p *Player) Movement() host.MovementState { return p.Move }

// Attributes returns Attrs.
func (p *Player) Attributes() attr.Store { return p.Attrs }

// Inventory returns Inv.
func (p *Player) Inventory() host.Inventory { return p.Inv }

// Worn returns WornItems.
func (p *Player) Worn() []host.ItemStack { return p.WornItems }

// MoveBy shifts the player horizontally.
func (p *Player) MoveBy(dx, dz float64) {
	p.Pos.X += dx
	p.Pos.Z += dz
}

// Entity is an in-memory host.Entity.
type Entity struct {
	id    int64
	code  string
	Pos   host.Vec3
	Attrs *attr.Tree
}

// ID returns the entity id.
func (e *Entity) ID() int64 { return e.id }

// Code returns the entity type code.
func (e *Entity) Code() string { return e.code }

// Position returns Pos.
func (e *Entity) Position() host.Vec3 { return e.Pos }

// Attributes returns Attrs.
func (e *Entity) Attributes() attr.Store { return e.Attrs }
