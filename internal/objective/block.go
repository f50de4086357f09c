package objective

import (
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// blockCount: <questId> <objectiveId> <blockCodeOrWildcard> <requiredCount>
// Counts blocks broken or placed, depending on kind.
type blockCount struct {
	kind BlockEventKind
}

type blockArgs struct {
	quest     string
	objective string
	pattern   string
	need      int
}

func parseBlockArgs(args []string) (blockArgs, bool) {
	var a blockArgs
	var ok bool
	if a.quest, ok = argAt(args, 0); !ok {
		return a, false
	}
	if a.objective, ok = argAt(args, 1); !ok {
		return a, false
	}
	if a.pattern, ok = argAt(args, 2); !ok {
		return a, false
	}
	if a.need, ok = intAt(args, 3); !ok || a.need <= 0 {
		return a, false
	}
	return a, true
}

func (o blockCount) key(a blockArgs) attr.Key {
	return attr.For("block"+o.kind.String(), a.quest).Obj(a.objective).With("have")
}

func (o blockCount) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseBlockArgs(args)
	if !ok {
		return false
	}
	return attr.GetInt(p.Attributes(), o.key(a)) >= a.need
}

func (o blockCount) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseBlockArgs(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(attr.GetInt(p.Attributes(), o.key(a)), a.need), a.need}
}

func (o blockCount) OnBlock(_ *Context, p host.Player, ev BlockEvent, args []string) bool {
	if ev.Kind != o.kind {
		return false
	}
	a, ok := parseBlockArgs(args)
	if !ok || !host.MatchCode(a.pattern, ev.Code) {
		return false
	}
	s := p.Attributes()
	if attr.GetInt(s, o.key(a)) >= a.need {
		return false
	}
	attr.AddInt(s, o.key(a), 1)
	return true
}
