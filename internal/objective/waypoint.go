package objective

import (
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// reachWaypoint: <questId> <objectiveId> <x,y,z> <radius>
// Latches once the player has been within radius of the waypoint on a tick.
type reachWaypoint struct{}

type waypointArgs struct {
	quest     string
	objective string
	target    host.Vec3
	radius    float64
}

func parseWaypoint(args []string) (waypointArgs, bool) {
	var a waypointArgs
	var ok bool
	if a.quest, ok = argAt(args, 0); !ok {
		return a, false
	}
	if a.objective, ok = argAt(args, 1); !ok {
		return a, false
	}
	coord, ok := argAt(args, 2)
	if !ok {
		return a, false
	}
	pos, ok := host.ParseBlockPos(coord)
	if !ok {
		return a, false
	}
	a.target = pos.Center()
	if a.radius, ok = floatAt(args, 3); !ok || a.radius < 0 {
		return a, false
	}
	return a, true
}

func (a waypointArgs) key() attr.Key {
	return attr.For("waypoint", a.quest).Obj(a.objective).With("reached")
}

func (reachWaypoint) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseWaypoint(args)
	if !ok {
		return false
	}
	return attr.GetBool(p.Attributes(), a.key())
}

func (w reachWaypoint) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(w.IsCompletable(c, p, args))
}

func (reachWaypoint) Tick(_ *Context, p host.Player, args []string) bool {
	a, ok := parseWaypoint(args)
	if !ok {
		return false
	}
	s := p.Attributes()
	if attr.GetBool(s, a.key()) || p.Position().Dist(a.target) > a.radius {
		return false
	}
	attr.SetBool(s, a.key(), true)
	return true
}
