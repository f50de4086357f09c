package action

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
)

// RegisterBuiltins installs the built-in actions.
func RegisterBuiltins(r *Registry) {
	r.MustRegister("notify", Func(notify))
	r.MustRegister("giveitem", Func(giveItem))
	r.MustRegister("takeitem", Func(takeItem))
	r.MustRegister("spawnentities", Func(spawnEntities))
	r.MustRegister("addplayerattribute", Func(addPlayerAttribute))
	r.MustRegister("removeplayerattribute", Func(removePlayerAttribute))
	r.MustRegister("addplayerint", Func(addPlayerInt))
	r.MustRegister("setplayerbool", Func(setPlayerBool))
	r.MustRegister("setquestgiverattribute", Func(setQuestGiverAttribute))
	r.MustRegister("addjournalentry", Func(addJournalEntry))
	r.MustRegister("acceptquest", Func(acceptQuest))
	r.MustRegister("completequest", Func(completeQuest))
	r.MustRegister("resetquest", Func(resetQuest))
	r.MustRegister("runactions", Func(runActions))
	r.MustRegister("chance", Func(chance))
}

// notify <text-or-langkey> [args...]
func notify(_ context.Context, env *Env, _ Message, p host.Player, args []string) error {
	if len(args) == 0 {
		return InvalidArgs("notify", "missing message")
	}
	fmtArgs := make([]any, len(args)-1)
	for i, a := range args[1:] {
		fmtArgs[i] = a
	}
	env.Notify(p, env.Text(args[0], fmtArgs...))
	return nil
}

// giveitem <code> [amount]
func giveItem(_ context.Context, env *Env, msg Message, p host.Player, args []string) error {
	if len(args) == 0 {
		return InvalidArgs("giveitem", "missing item code")
	}
	amount, err := optionalInt("giveitem", args, 1, 1)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return InvalidArgs("giveitem", "amount must be positive, got %d", amount)
	}
	code := args[0]
	if env.World != nil && !env.World.ItemExists(code) {
		return UnknownContent("giveitem", "unknown item %q", code)
	}
	if err := Deliver(env, p, msg.GiverID, host.ItemStack{Code: code, Quantity: amount}); err != nil {
		var ae *Error
		if errors.As(err, &ae) {
			ae.Action = "giveitem"
		}
		return err
	}
	return nil
}

// takeitem <codeOrWildcard> <amount>
func takeItem(_ context.Context, env *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("takeitem", "want <code> <amount>, got %d args", len(args))
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		return InvalidArgs("takeitem", "invalid amount %q", args[1])
	}
	taken := p.Inventory().Take(args[0], amount)
	if taken < amount {
		env.logger().Debug("took fewer items than requested",
			"player", p.UID(),
			"pattern", args[0],
			"requested", amount,
			"taken", taken)
	}
	return nil
}

// spawnentities <code> [count]
func spawnEntities(_ context.Context, env *Env, _ Message, p host.Player, args []string) error {
	if len(args) == 0 {
		return InvalidArgs("spawnentities", "missing entity code")
	}
	count, err := optionalInt("spawnentities", args, 1, 1)
	if err != nil {
		return err
	}
	if env.World == nil {
		return &Error{Code: ErrCodeUnknownContent, Action: "spawnentities", Message: "no world"}
	}
	code := args[0]
	if !env.World.EntityTypeExists(code) {
		return UnknownContent("spawnentities", "unknown entity type %q", code)
	}
	for range count {
		if _, err := env.World.SpawnEntity(code, p.Position()); err != nil {
			return &Error{Code: ErrCodeUnknownContent, Action: "spawnentities", Message: "spawn " + code, Err: err}
		}
	}
	return nil
}

// addplayerattribute <key> <value>
func addPlayerAttribute(_ context.Context, _ *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("addplayerattribute", "want <key> <value>")
	}
	p.Attributes().Set(args[0], attr.StringValue(strings.Join(args[1:], " ")))
	return nil
}

// removeplayerattribute <key>
func removePlayerAttribute(_ context.Context, _ *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 1 {
		return InvalidArgs("removeplayerattribute", "missing key")
	}
	p.Attributes().Remove(args[0])
	return nil
}

// addplayerint <key> <delta>
func addPlayerInt(_ context.Context, _ *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("addplayerint", "want <key> <delta>")
	}
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return InvalidArgs("addplayerint", "invalid delta %q", args[1])
	}
	store := p.Attributes()
	var cur int64
	if v, ok := store.Get(args[0]); ok {
		cur, _ = v.AsInt()
	}
	store.Set(args[0], attr.IntValue(cur+delta))
	return nil
}

// setplayerbool <key> <true|false>
func setPlayerBool(_ context.Context, _ *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("setplayerbool", "want <key> <true|false>")
	}
	b, err := strconv.ParseBool(args[1])
	if err != nil {
		return InvalidArgs("setplayerbool", "invalid bool %q", args[1])
	}
	p.Attributes().Set(args[0], attr.BoolValue(b))
	return nil
}

// setquestgiverattribute <key> <value>
func setQuestGiverAttribute(_ context.Context, env *Env, msg Message, _ host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("setquestgiverattribute", "want <key> <value>")
	}
	if env.World == nil {
		return UnknownContent("setquestgiverattribute", "no world")
	}
	giver, ok := env.World.Entity(msg.GiverID)
	if !ok {
		return UnknownContent("setquestgiverattribute", "quest giver %d not found", msg.GiverID)
	}
	giver.Attributes().Set(args[0], attr.StringValue(strings.Join(args[1:], " ")))
	return nil
}

// addjournalentry <loreCode> <title> <text...>
//
// An entry whose title already exists under the lore code is not added
// again.
func addJournalEntry(_ context.Context, env *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 3 {
		return InvalidArgs("addjournalentry", "want <loreCode> <title> <text>")
	}
	if env.Journal == nil {
		env.logger().Debug("no journal configured, entry dropped", "lore", args[0])
		return nil
	}
	entry := host.JournalEntry{
		LoreCode: args[0],
		Title:    env.Text(args[1]),
		Text:     env.Text(strings.Join(args[2:], " ")),
	}
	for _, e := range env.Journal.Entries(p.UID(), entry.LoreCode) {
		if e.Title == entry.Title && e.Text == entry.Text {
			return nil
		}
	}
	env.Journal.AddEntry(p.UID(), entry)
	return nil
}

// acceptquest <questId>
func acceptQuest(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error {
	if len(args) < 1 {
		return InvalidArgs("acceptquest", "missing quest id")
	}
	if env.Quests == nil {
		return UnknownContent("acceptquest", "no quest controller")
	}
	if err := env.Quests.AcceptQuest(ctx, p, args[0], msg.GiverID); err != nil {
		return &Error{Code: ErrCodeUnknownContent, Action: "acceptquest", Message: "accept " + args[0], Err: err}
	}
	return nil
}

// completequest [questId]
func completeQuest(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error {
	questID := msg.QuestID
	if len(args) > 0 {
		questID = args[0]
	}
	if questID == "" {
		return InvalidArgs("completequest", "missing quest id")
	}
	if env.Quests == nil {
		return UnknownContent("completequest", "no quest controller")
	}
	if err := env.Quests.CompleteQuest(ctx, p, questID, msg.GiverID); err != nil {
		return &Error{Code: ErrCodeUnknownContent, Action: "completequest", Message: "complete " + questID, Err: err}
	}
	return nil
}

// resetquest <questId>
func resetQuest(ctx context.Context, env *Env, _ Message, p host.Player, args []string) error {
	if len(args) < 1 {
		return InvalidArgs("resetquest", "missing quest id")
	}
	if env.Quests == nil {
		return UnknownContent("resetquest", "no quest controller")
	}
	if err := env.Quests.ResetQuest(ctx, p, args[0]); err != nil {
		return &Error{Code: ErrCodeUnknownContent, Action: "resetquest", Message: "reset " + args[0], Err: err}
	}
	return nil
}

// runactions '<action string>'
//
// Failures inside the nested string are reported where they happen.
func runActions(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error {
	if len(args) == 0 {
		return InvalidArgs("runactions", "missing action string")
	}
	env.Dispatch(ctx, msg, p, strings.Join(args, " "))
	return nil
}

// chance <percent> '<action string>'
func chance(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error {
	if len(args) < 2 {
		return InvalidArgs("chance", "want <percent> <action string>")
	}
	pct, err := strconv.ParseFloat(args[0], 64)
	if err != nil || pct < 0 {
		return InvalidArgs("chance", "invalid percent %q", args[0])
	}
	if env.Float64()*100 >= pct {
		return nil
	}
	env.Dispatch(ctx, msg, p, strings.Join(args[1:], " "))
	return nil
}

func optionalInt(action string, args []string, idx, def int) (int, error) {
	if len(args) <= idx {
		return def, nil
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, InvalidArgs(action, "invalid integer %q", args[idx])
	}
	return n, nil
}
