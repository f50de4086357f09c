package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/quester/internal/action"
	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/objective"
	"github.com/roach88/quester/internal/quest"
)

// FiredKey is the per-objective flag recording that an onComplete already
// ran for the current acceptance of a quest.
func FiredKey(questID string, index int) attr.Key {
	return attr.For("fired", questID).InSlot(index)
}

// Trigger runs objective completion actions at most once.
type Trigger struct {
	env    *action.Env
	logger *slog.Logger
}

// NewTrigger returns a trigger running actions against env. A nil logger
// falls back to slog.Default.
func NewTrigger(env *action.Env, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{env: env, logger: logger}
}

// TryFireOnComplete runs desc.OnComplete when isNowComplete is true and the
// fired flag for (quest, index) is unset. The flag is set before the actions
// run, so an evaluation re-entered from those actions cannot fire again. A
// false isNowComplete never clears the flag. It reports whether it fired.
func (t *Trigger) TryFireOnComplete(ctx context.Context, p host.Player, aq quest.ActiveQuest, desc objective.Descriptor, index int, isNowComplete bool) bool {
	if !isNowComplete {
		return false
	}
	s := p.Attributes()
	flag := FiredKey(aq.QuestID, index)
	if attr.GetBool(s, flag) {
		return false
	}
	attr.SetBool(s, flag, true)

	t.logger.Info("objective completed",
		"player", p.UID(),
		"quest", aq.QuestID,
		"objective", desc.Type,
		"index", index)

	if desc.OnComplete != "" {
		t.env.Dispatch(ctx, action.Message{QuestID: aq.QuestID, GiverID: aq.GiverID}, p, desc.OnComplete)
	}
	return true
}

// Fired reports whether the flag for (quest, index) is set.
func Fired(p host.Player, questID string, index int) bool {
	return attr.GetBool(p.Attributes(), FiredKey(questID, index))
}
