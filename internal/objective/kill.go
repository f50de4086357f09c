package objective

import (
	"context"
	"strconv"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// killNear: <questId> <objectiveId> <x,y,z> <radius> <mobCodeOrWildcard> <requiredCount>
type killNear struct{}

type killNearArgs struct {
	quest     string
	objective string
	center    host.Vec3
	radius    float64
	pattern   string
	need      int
}

func parseKillNear(args []string) (killNearArgs, bool) {
	var a killNearArgs
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
	a.center = pos.Center()
	if a.radius, ok = floatAt(args, 3); !ok || a.radius < 0 {
		return a, false
	}
	if a.pattern, ok = argAt(args, 4); !ok {
		return a, false
	}
	if a.need, ok = intAt(args, 5); !ok || a.need <= 0 {
		return a, false
	}
	return a, true
}

func (a killNearArgs) have() attr.Key {
	return attr.For("killnear", a.quest).Obj(a.objective).With("have")
}

func (killNear) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseKillNear(args)
	if !ok {
		return false
	}
	return attr.GetInt(p.Attributes(), a.have()) >= a.need
}

func (killNear) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseKillNear(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(attr.GetInt(p.Attributes(), a.have()), a.need), a.need}
}

func (killNear) OnKill(_ *Context, p host.Player, victim host.Entity, args []string) bool {
	a, ok := parseKillNear(args)
	if !ok || !host.MatchCode(a.pattern, victim.Code()) {
		return false
	}
	if victim.Position().Dist(a.center) > a.radius {
		return false
	}
	s := p.Attributes()
	if attr.GetInt(s, a.have()) >= a.need {
		return false
	}
	attr.AddInt(s, a.have(), 1)
	return true
}

// Random kill slots are rolled by the rollrandomkill action, usually on
// accept. Each slot holds a mob code, a required count and a kill counter.

func randKillKey(questID string) attr.Key {
	return attr.For("randkill", questID)
}

type randSlot struct {
	code string
	need int
	have int
}

func readSlot(s attr.Store, questID string, n int) randSlot {
	k := randKillKey(questID).InSlot(n)
	return randSlot{
		code: attr.GetString(s, k.With("code")),
		need: attr.GetInt(s, k.With("need")),
		have: attr.GetInt(s, k.With("have")),
	}
}

func (r randSlot) done() bool {
	return r.need > 0 && r.have >= r.need
}

// randomKill: <questId> [slot]. Without a slot every rolled slot must be done.
type randomKill struct{}

func (randomKill) slots(s attr.Store, args []string) (quest string, slots []int, ok bool) {
	quest, ok = argAt(args, 0)
	if !ok {
		return "", nil, false
	}
	if len(args) > 1 {
		n, ok := intAt(args, 1)
		if !ok || n < 0 {
			return "", nil, false
		}
		return quest, []int{n}, true
	}
	count := attr.GetInt(s, randKillKey(quest).With("slots"))
	if count <= 0 {
		return "", nil, false
	}
	for i := range count {
		slots = append(slots, i)
	}
	return quest, slots, true
}

func (o randomKill) IsCompletable(_ *Context, p host.Player, args []string) bool {
	s := p.Attributes()
	quest, slots, ok := o.slots(s, args)
	if !ok {
		return false
	}
	for _, n := range slots {
		if !readSlot(s, quest, n).done() {
			return false
		}
	}
	return true
}

func (o randomKill) Progress(_ *Context, p host.Player, args []string) []int {
	s := p.Attributes()
	quest, slots, ok := o.slots(s, args)
	if !ok {
		return []int{0, 0}
	}
	have, need := 0, 0
	for _, n := range slots {
		r := readSlot(s, quest, n)
		have += clamp(r.have, r.need)
		need += r.need
	}
	return []int{have, need}
}

// OnKill counts the kill against the first unfinished slot rolled for the
// victim's code.
func (o randomKill) OnKill(_ *Context, p host.Player, victim host.Entity, args []string) bool {
	s := p.Attributes()
	quest, slots, ok := o.slots(s, args)
	if !ok {
		return false
	}
	for _, n := range slots {
		r := readSlot(s, quest, n)
		if r.code == "" || r.done() || !host.MatchCode(r.code, victim.Code()) {
			continue
		}
		attr.SetInt(s, randKillKey(quest).InSlot(n).With("have"), r.have+1)
		return true
	}
	return false
}

// rollRandomKill: <questId> <slots> <min> <max> <mob>...
//
// Rolls min(slots, len(mobs)) slots without repeating a mob; each required
// count is drawn from [min, max]. A quest whose slots are already rolled is
// left alone.
func rollRandomKill(_ context.Context, env *action.Env, _ action.Message, p host.Player, args []string) error {
	if len(args) < 5 {
		return action.InvalidArgs("rollrandomkill", "want <questId> <slots> <min> <max> <mob>...")
	}
	quest := args[0]
	slots, err1 := strconv.Atoi(args[1])
	lo, err2 := strconv.Atoi(args[2])
	hi, err3 := strconv.Atoi(args[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return action.InvalidArgs("rollrandomkill", "slots, min and max must be integers")
	}
	if slots <= 0 || lo <= 0 || hi < lo {
		return action.InvalidArgs("rollrandomkill", "need slots > 0 and 0 < min <= max, got %d %d %d", slots, lo, hi)
	}

	s := p.Attributes()
	if attr.GetInt(s, randKillKey(quest).With("slots")) > 0 {
		return nil
	}

	pool := append([]string(nil), args[4:]...)
	n := min(slots, len(pool))
	for i := range n {
		j := i + env.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]

		k := randKillKey(quest).InSlot(i)
		attr.SetString(s, k.With("code"), pool[i])
		attr.SetInt(s, k.With("need"), lo+env.IntN(hi-lo+1))
		attr.SetInt(s, k.With("have"), 0)
	}
	attr.SetInt(s, randKillKey(quest).With("slots"), n)
	return nil
}
