package quest

import (
	"fmt"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/actionstr"
	"github.com/roach88/quester/internal/objective"
)

// ValidationIssue is a problem that does not stop a quest from loading but
// will make part of it inert at runtime.
type ValidationIssue struct {
	Quest   string `json:"quest"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// String formats the issue as quest.<id>.<field>: <message>.
func (v ValidationIssue) String() string {
	return fmt.Sprintf("quest.%s.%s: %s", v.Quest, v.Field, v.Message)
}

// Validate checks a definition against the registered objective types and
// action ids. Predecessors are resolved against quests when non-nil.
func Validate(def *Definition, objectives *objective.Registry, actions *action.Registry, quests *Registry) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, format string, args ...any) {
		issues = append(issues, ValidationIssue{Quest: def.ID, Field: field, Message: fmt.Sprintf(format, args...)})
	}
	checkActions := func(field, s string) {
		for _, cmd := range actionstr.Parse(s) {
			if _, ok := actions.Lookup(cmd.ID); !ok {
				add(field, "unknown action %q", cmd.ID)
			}
		}
	}

	ids := make(map[string]int)
	for i, o := range def.Objectives {
		field := fmt.Sprintf("objectives[%d]", i)
		if _, ok := objectives.Lookup(o.Type); !ok {
			add(field+".type", "unknown objective type %q", o.Type)
		}
		if o.ID != "" {
			if prev, dup := ids[o.ID]; dup {
				add(field+".id", "duplicate objective id %q (also objectives[%d])", o.ID, prev)
			} else {
				ids[o.ID] = i
			}
		}
		if o.OnComplete != "" {
			checkActions(field+".onComplete", o.OnComplete)
		}
	}
	for i, o := range def.Objectives {
		target, ok := objectives.IsGate(o)
		if ok {
			if _, found := ids[target]; !found {
				add(fmt.Sprintf("objectives[%d].args", i), "gate targets unknown objective %q", target)
			}
		}
	}

	for i, s := range def.AcceptActions {
		checkActions(fmt.Sprintf("onAccept[%d]", i), s)
	}
	for i, s := range def.CompleteActions {
		checkActions(fmt.Sprintf("onComplete[%d]", i), s)
	}

	if def.RandomRewards.SelectAmount > 0 && len(def.RandomRewards.Items) == 0 {
		add("randomRewards", "select %d from an empty pool", def.RandomRewards.SelectAmount)
	}
	if def.Predecessor != "" {
		if def.Predecessor == def.ID {
			add("predecessor", "quest is its own predecessor")
		} else if quests != nil {
			if _, ok := quests.Get(def.Predecessor); !ok {
				add("predecessor", "unknown quest %q", def.Predecessor)
			}
		}
	}
	return issues
}
