package objective

import (
	"context"
	"strconv"
	"strings"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

const legacyInteractField = "done"

func interactKey(questID string, pos host.BlockPos) attr.Key {
	return attr.For("interact", questID).With(pos.String())
}

// legacyInteracted parses the comma-joined coordinate set older saves kept in
// a single attribute: "x,y,z,x,y,z,...".
func legacyInteracted(s attr.Store, questID string) map[host.BlockPos]bool {
	raw := attr.GetString(s, attr.For("interact", questID).With(legacyInteractField))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(map[host.BlockPos]bool, len(parts)/3)
	for i := 0; i+2 < len(parts); i += 3 {
		x, errX := strconv.Atoi(strings.TrimSpace(parts[i]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[i+1]))
		z, errZ := strconv.Atoi(strings.TrimSpace(parts[i+2]))
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		out[host.BlockPos{X: x, Y: y, Z: z}] = true
	}
	return out
}

func parseCoords(args []string) ([]host.BlockPos, bool) {
	if len(args) == 0 {
		return nil, false
	}
	out := make([]host.BlockPos, 0, len(args))
	for _, a := range args {
		pos, ok := host.ParseBlockPos(a)
		if !ok {
			return nil, false
		}
		out = append(out, pos)
	}
	return out, true
}

// interactAt: <x,y,z> (single) or interactCount: <x,y,z>... (all of them).
// Coordinates are marked by block interaction events or the markinteraction
// action.
type interactAt struct {
	multi bool
}

func (o interactAt) coords(args []string) ([]host.BlockPos, bool) {
	if !o.multi && len(args) != 1 {
		return nil, false
	}
	return parseCoords(args)
}

func (o interactAt) count(c *Context, p host.Player, coords []host.BlockPos) int {
	s := p.Attributes()
	legacy := legacyInteracted(s, c.QuestID)
	n := 0
	for _, pos := range coords {
		if attr.GetBool(s, interactKey(c.QuestID, pos)) || legacy[pos] {
			n++
		}
	}
	return n
}

func (o interactAt) IsCompletable(c *Context, p host.Player, args []string) bool {
	coords, ok := o.coords(args)
	if !ok {
		return false
	}
	return o.count(c, p, coords) == len(coords)
}

func (o interactAt) Progress(c *Context, p host.Player, args []string) []int {
	coords, ok := o.coords(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{o.count(c, p, coords), len(coords)}
}

func (o interactAt) OnBlock(c *Context, p host.Player, ev BlockEvent, args []string) bool {
	if ev.Kind != BlockInteract {
		return false
	}
	coords, ok := o.coords(args)
	if !ok {
		return false
	}
	s := p.Attributes()
	for _, pos := range coords {
		if pos != ev.Pos {
			continue
		}
		k := interactKey(c.QuestID, pos)
		if attr.GetBool(s, k) {
			return false
		}
		attr.SetBool(s, k, true)
		return true
	}
	return false
}

// markInteraction: <x,y,z>
func markInteraction(_ context.Context, _ *action.Env, msg action.Message, p host.Player, args []string) error {
	if len(args) < 1 {
		return action.InvalidArgs("markinteraction", "missing coordinate")
	}
	pos, ok := host.ParseBlockPos(args[0])
	if !ok {
		return action.InvalidArgs("markinteraction", "invalid coordinate %q", args[0])
	}
	if msg.QuestID == "" {
		return action.InvalidArgs("markinteraction", "no quest in context")
	}
	attr.SetBool(p.Attributes(), interactKey(msg.QuestID, pos), true)
	return nil
}

// interactWithEntity: <questId> <objectiveId> <entityCodeOrWildcard> <requiredCount>
// Each entity counts once.
type interactWithEntity struct{}

type entityArgs struct {
	quest     string
	objective string
	pattern   string
	need      int
}

func parseEntityArgs(args []string) (entityArgs, bool) {
	var a entityArgs
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

func (a entityArgs) key() attr.Key {
	return attr.For("interactentity", a.quest).Obj(a.objective)
}

func (interactWithEntity) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseEntityArgs(args)
	if !ok {
		return false
	}
	return attr.GetInt(p.Attributes(), a.key().With("have")) >= a.need
}

func (interactWithEntity) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseEntityArgs(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(attr.GetInt(p.Attributes(), a.key().With("have")), a.need), a.need}
}

func (interactWithEntity) OnEntityInteract(_ *Context, p host.Player, target host.Entity, args []string) bool {
	a, ok := parseEntityArgs(args)
	if !ok || !host.MatchCode(a.pattern, target.Code()) {
		return false
	}
	s := p.Attributes()
	have := a.key().With("have")
	if attr.GetInt(s, have) >= a.need {
		return false
	}
	seen := a.key().With("e" + strconv.FormatInt(target.ID(), 10))
	if attr.GetBool(s, seen) {
		return false
	}
	attr.SetBool(s, seen, true)
	attr.AddInt(s, have, 1)
	return true
}
