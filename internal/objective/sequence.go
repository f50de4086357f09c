package objective

import (
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

const (
	// sequenceIterationCap bounds how many steps one evaluation may advance.
	sequenceIterationCap = 64
	// sequenceMaxDepth bounds sequences nested inside sequences.
	sequenceMaxDepth = 8
)

// sequence: <questId> <sequenceId> <stepObjectiveId>...
//
// The step pointer lives in the player's attributes. Each evaluation moves
// it past every leading step that is completable right now. It never moves
// back.
type sequence struct{}

type sequenceArgs struct {
	quest string
	id    string
	steps []string
}

func parseSequence(args []string) (sequenceArgs, bool) {
	var a sequenceArgs
	var ok bool
	if a.quest, ok = argAt(args, 0); !ok {
		return a, false
	}
	if a.id, ok = argAt(args, 1); !ok {
		return a, false
	}
	if len(args) < 3 {
		return a, false
	}
	a.steps = args[2:]
	return a, true
}

func (a sequenceArgs) key() attr.Key {
	return attr.For("seq", a.quest).Obj(a.id).With("step")
}

// StepKey is the attribute key holding a sequence's step pointer.
func StepKey(questID, sequenceID string) attr.Key {
	return sequenceArgs{quest: questID, id: sequenceID}.key()
}

func (sequence) IsCompletable(c *Context, p host.Player, args []string) bool {
	a, ok := parseSequence(args)
	if !ok {
		return false
	}
	s := p.Attributes()
	stored := attr.GetInt(s, a.key())
	step := stored
	if step >= len(a.steps) {
		return true
	}
	if c.Registry == nil || c.depth >= sequenceMaxDepth {
		return false
	}

	for i := 0; i < sequenceIterationCap && step < len(a.steps); i++ {
		idx, found := c.Sibling(a.steps[step])
		if !found {
			break
		}
		child := c.At(idx)
		child.depth = c.depth + 1
		if !c.Registry.IsCompletable(child, p) {
			break
		}
		step++
	}

	if step > stored {
		attr.SetInt(s, a.key(), step)
		c.logger().Debug("sequence advanced",
			"quest", a.quest,
			"sequence", a.id,
			"from", stored,
			"to", step)
	}
	return step >= len(a.steps)
}

func (sequence) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseSequence(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(attr.GetInt(p.Attributes(), a.key()), len(a.steps)), len(a.steps)}
}

func (sequence) Start(_ *Context, p host.Player, args []string) {
	a, ok := parseSequence(args)
	if !ok {
		return
	}
	attr.SetInt(p.Attributes(), a.key(), 0)
}
