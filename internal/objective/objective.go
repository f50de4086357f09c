package objective

import (
	"log/slog"

	"github.com/roach88/quester/internal/host"
)

// Descriptor is one objective entry of a quest definition.
type Descriptor struct {
	Type       string   `json:"type"`
	ID         string   `json:"id,omitempty"`
	Args       []string `json:"args,omitempty"`
	OnComplete string   `json:"onComplete,omitempty"`
}

// Context is what an evaluator may consult besides the player.
type Context struct {
	World     host.World
	QuestID   string
	Index     int
	Objective Descriptor
	Siblings  []Descriptor
	Registry  *Registry
	Logger    *slog.Logger

	depth int
}

// NewContext builds the context for objective index of a quest.
func NewContext(reg *Registry, world host.World, questID string, objectives []Descriptor, index int) *Context {
	c := &Context{
		World:    world,
		QuestID:  questID,
		Siblings: objectives,
		Registry: reg,
	}
	return c.At(index)
}

// At returns a copy of c pointing at sibling i.
func (c *Context) At(i int) *Context {
	cc := *c
	cc.Index = i
	cc.Objective = Descriptor{}
	if i >= 0 && i < len(c.Siblings) {
		cc.Objective = c.Siblings[i]
	}
	return &cc
}

// Sibling finds an objective of the same quest by id.
func (c *Context) Sibling(id string) (int, bool) {
	for i, d := range c.Siblings {
		if d.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (c *Context) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Objective is a progress evaluator.
type Objective interface {
	IsCompletable(c *Context, p host.Player, args []string) bool
	// Progress returns {have, need}, or {have} when need is implicitly 1.
	Progress(c *Context, p host.Player, args []string) []int
}

// Ticker objectives accumulate state once per tick. Tick reports whether
// state changed.
type Ticker interface {
	Tick(c *Context, p host.Player, args []string) bool
}

// Starter objectives initialise trackers when the quest is accepted.
type Starter interface {
	Start(c *Context, p host.Player, args []string)
}

// Pauser objectives are told when a closed gate holds them back for a tick,
// so that trackers do not bank what happened meanwhile.
type Pauser interface {
	Pause(c *Context, p host.Player, args []string)
}

// KillListener objectives count entity deaths caused by the player.
type KillListener interface {
	OnKill(c *Context, p host.Player, victim host.Entity, args []string) bool
}

// BlockEventKind says what a player did to a block.
type BlockEventKind int

const (
	BlockInteract BlockEventKind = iota
	BlockBreak
	BlockPlace
)

// String names the kind as quest arguments spell it.
func (k BlockEventKind) String() string {
	switch k {
	case BlockInteract:
		return "interact"
	case BlockBreak:
		return "break"
	case BlockPlace:
		return "place"
	default:
		return "unknown"
	}
}

// BlockEvent is a player acting on a block.
type BlockEvent struct {
	Kind BlockEventKind
	Pos  host.BlockPos
	Code string
}

// BlockListener objectives count block interactions, breaks or places.
type BlockListener interface {
	OnBlock(c *Context, p host.Player, ev BlockEvent, args []string) bool
}

// EntityInteractListener objectives count interactions with entities.
type EntityInteractListener interface {
	OnEntityInteract(c *Context, p host.Player, target host.Entity, args []string) bool
}

// Gate objectives restrict when another objective of the same quest may
// progress. GateTarget names that objective; a gate without a target is an
// ordinary predicate.
type Gate interface {
	GateTarget(args []string) (string, bool)
}
