package objective

import (
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// temporalStorm: <questId> <requiredCount>
//
// Counts storms survived: the counter moves only on the transition from an
// active storm to no storm. State is scoped to the objective id, or to its
// index when it has none, so several storm objectives in one quest count
// independently.
type temporalStorm struct{}

type stormArgs struct {
	quest string
	need  int
}

func parseStorm(args []string) (stormArgs, bool) {
	var a stormArgs
	var ok bool
	if a.quest, ok = argAt(args, 0); !ok {
		return a, false
	}
	if a.need, ok = intAt(args, 1); !ok || a.need <= 0 {
		return a, false
	}
	return a, true
}

func (a stormArgs) key(c *Context) attr.Key {
	k := attr.For("tempstorm", a.quest)
	if c == nil {
		return k.InSlot(0)
	}
	if c.Objective.ID != "" {
		return k.Obj(c.Objective.ID)
	}
	return k.InSlot(c.Index)
}

func (temporalStorm) IsCompletable(c *Context, p host.Player, args []string) bool {
	a, ok := parseStorm(args)
	if !ok {
		return false
	}
	return attr.GetInt(p.Attributes(), a.key(c).With("have")) >= a.need
}

func (temporalStorm) Progress(c *Context, p host.Player, args []string) []int {
	a, ok := parseStorm(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(attr.GetInt(p.Attributes(), a.key(c).With("have")), a.need), a.need}
}

func (temporalStorm) Start(c *Context, p host.Player, args []string) {
	a, ok := parseStorm(args)
	if !ok || c.World == nil {
		return
	}
	attr.SetBool(p.Attributes(), a.key(c).With("wasactive"), c.World.StormActive())
}

func (temporalStorm) Tick(c *Context, p host.Player, args []string) bool {
	a, ok := parseStorm(args)
	if !ok || c.World == nil {
		return false
	}
	s := p.Attributes()
	active := c.World.StormActive()
	was := attr.GetBool(s, a.key(c).With("wasactive"))
	if active != was {
		attr.SetBool(s, a.key(c).With("wasactive"), active)
	}
	if !was || active {
		return false
	}
	have := attr.GetInt(s, a.key(c).With("have"))
	if have >= a.need {
		return false
	}
	attr.SetInt(s, a.key(c).With("have"), have+1)
	return true
}
