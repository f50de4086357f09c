package objective

import (
	"context"
	"math"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

const (
	// TeleportGuard is the largest per-tick displacement still counted as
	// walking.
	TeleportGuard = 20.0
	// JitterGuard is the smallest per-tick displacement counted as walking.
	JitterGuard = 0.05
)

// walkDistance: <questId> [slot] <requiredMeters>
type walkDistance struct{}

type walkArgs struct {
	quest string
	slot  int
	need  float64
}

func parseWalk(args []string) (walkArgs, bool) {
	var a walkArgs
	var ok bool
	if a.quest, ok = argAt(args, 0); !ok {
		return a, false
	}
	needIdx := 1
	if len(args) >= 3 {
		if a.slot, ok = intAt(args, 1); !ok || a.slot < 0 {
			return a, false
		}
		needIdx = 2
	}
	if a.need, ok = floatAt(args, needIdx); !ok || a.need <= 0 {
		return a, false
	}
	return a, true
}

func walkKey(quest string, slot int) attr.Key {
	return attr.For("walkdist", quest).InSlot(slot)
}

func (a walkArgs) key() attr.Key {
	return walkKey(a.quest, a.slot)
}

func (walkDistance) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseWalk(args)
	if !ok {
		return false
	}
	return attr.GetFloat(p.Attributes(), a.key().With("have")) >= a.need
}

func (walkDistance) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseWalk(args)
	if !ok {
		return []int{0, 0}
	}
	have := attr.GetFloat(p.Attributes(), a.key().With("have"))
	return []int{int(math.Floor(have)), int(math.Ceil(a.need))}
}

func (walkDistance) Start(_ *Context, p host.Player, args []string) {
	a, ok := parseWalk(args)
	if !ok {
		return
	}
	s := p.Attributes()
	attr.SetFloat(s, a.key().With("have"), 0)
	setWalkRef(s, a.key(), p.Position())
}

// Tick accumulates horizontal displacement since the last reference point.
// In order: a disqualifying movement state, a teleport-sized jump, or
// sub-jitter movement only move the reference. Otherwise the displacement is
// added and clamped to the requirement.
func (walkDistance) Tick(_ *Context, p host.Player, args []string) bool {
	a, ok := parseWalk(args)
	if !ok {
		return false
	}
	s := p.Attributes()
	k := a.key()
	pos := p.Position()

	have := attr.GetFloat(s, k.With("have"))
	if have >= a.need {
		return false
	}
	if !attr.GetBool(s, k.With("hasref")) {
		setWalkRef(s, k, pos)
		return false
	}
	last := host.Vec3{X: attr.GetFloat(s, k.With("lastx")), Z: attr.GetFloat(s, k.With("lastz"))}

	if !p.Movement().CanAccumulateWalk() {
		setWalkRef(s, k, pos)
		return false
	}
	d := pos.DistXZ(last)
	if d > TeleportGuard || d < JitterGuard {
		setWalkRef(s, k, pos)
		return false
	}

	attr.SetFloat(s, k.With("have"), math.Min(have+d, a.need))
	setWalkRef(s, k, pos)
	return true
}

// Pause moves the reference so that movement while gated is not counted.
func (walkDistance) Pause(_ *Context, p host.Player, args []string) {
	a, ok := parseWalk(args)
	if !ok {
		return
	}
	setWalkRef(p.Attributes(), a.key(), p.Position())
}

func setWalkRef(s attr.Store, k attr.Key, pos host.Vec3) {
	attr.SetFloat(s, k.With("lastx"), pos.X)
	attr.SetFloat(s, k.With("lastz"), pos.Z)
	attr.SetBool(s, k.With("hasref"), true)
}

// resetWalkDistance: <questId> [slot]
func resetWalkDistance(_ context.Context, _ *action.Env, _ action.Message, p host.Player, args []string) error {
	quest, ok := argAt(args, 0)
	if !ok {
		return action.InvalidArgs("resetwalkdistance", "missing quest id")
	}
	slot := 0
	if len(args) > 1 {
		if slot, ok = intAt(args, 1); !ok || slot < 0 {
			return action.InvalidArgs("resetwalkdistance", "invalid slot %q", args[1])
		}
	}
	s := p.Attributes()
	k := walkKey(quest, slot)
	for _, f := range []string{"have", "lastx", "lastz", "hasref"} {
		attr.Delete(s, k.With(f))
	}
	return nil
}
