package action

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/roach88/quester/internal/actionstr"
	"github.com/roach88/quester/internal/host"
)

// DefaultMaxDepth bounds nested dispatch (runactions, chance, completequest
// chains) when Env.MaxDepth is zero.
const DefaultMaxDepth = 16

// Message carries the quest context an action runs in.
type Message struct {
	QuestID string
	GiverID int64
}

// Action is one named side-effect handler.
type Action interface {
	Execute(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error
}

// Func adapts a plain function to Action.
type Func func(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error

// Execute calls f.
func (f Func) Execute(ctx context.Context, env *Env, msg Message, p host.Player, args []string) error {
	return f(ctx, env, msg, p, args)
}

// QuestController is the slice of the lifecycle manager actions may drive.
// Accepting an already active quest is not an error.
type QuestController interface {
	AcceptQuest(ctx context.Context, p host.Player, questID string, giverID int64) error
	CompleteQuest(ctx context.Context, p host.Player, questID string, giverID int64) error
	ResetQuest(ctx context.Context, p host.Player, questID string) error
}

// Outcome describes one dispatched command.
type Outcome struct {
	Message
	PlayerUID string
	Command   actionstr.Command
	Skipped   bool // unknown action id
	Err       error
}

// Observer receives every dispatched command after it ran.
type Observer func(Outcome)

// Env is everything a handler may touch.
type Env struct {
	Registry  *Registry
	World     host.World
	Notifier  host.Notifier
	Localizer host.Localizer
	Journal   host.Journal
	Quests    QuestController
	Rand      *rand.Rand
	Logger    *slog.Logger

	MaxDepth     int
	NotifyErrors bool
	Observer     Observer
}

// Dispatch runs a nested action string through the same registry.
func (e *Env) Dispatch(ctx context.Context, msg Message, p host.Player, actionString string) []error {
	if e.Registry == nil {
		return nil
	}
	return e.Registry.Run(ctx, e, msg, p, actionString)
}

// Text localizes key, falling back to the key itself without a localizer.
func (e *Env) Text(key string, args ...any) string {
	if e.Localizer == nil {
		return key
	}
	return e.Localizer.Lookup(key, args...)
}

// Notify sends text to p when a notifier is configured.
func (e *Env) Notify(p host.Player, text string) {
	if e.Notifier == nil || p == nil {
		return
	}
	e.Notifier.Notify(p, text)
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Float64 draws from Env.Rand, or the global source when unset.
func (e *Env) Float64() float64 {
	if e.Rand != nil {
		return e.Rand.Float64()
	}
	return rand.Float64()
}

// IntN draws from Env.Rand, or the global source when unset.
func (e *Env) IntN(n int) int {
	if e.Rand != nil {
		return e.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (e *Env) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}
	return DefaultMaxDepth
}

type depthKey struct{}

func depthFrom(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

func withDepth(ctx context.Context, d int) context.Context {
	return context.WithValue(ctx, depthKey{}, d)
}

func playerUID(p host.Player) string {
	if p == nil {
		return ""
	}
	return p.UID()
}
