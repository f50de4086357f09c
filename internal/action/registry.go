package action

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/quester/internal/actionstr"
	"github.com/roach88/quester/internal/host"
)

// ErrorNotice is the text sent to a player when one of their actions fails.
const ErrorNotice = "An error occurred while running a quest action."

// Registry maps lower-case action ids to handlers.
//
// Registration happens at startup; lookups afterwards are read-only. The
// mutex only protects late registration by extension modules.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds a handler. Ids are case-insensitive.
func (r *Registry) Register(id string, a Action) error {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return fmt.Errorf("register action: empty id")
	}
	if a == nil {
		return fmt.Errorf("register action %q: nil handler", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[id]; exists {
		return fmt.Errorf("register action %q: already registered", id)
	}
	r.actions[id] = a
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(id string, a Action) {
	if err := r.Register(id, a); err != nil {
		panic(err)
	}
}

// Lookup finds the handler for id, ignoring case.
func (r *Registry) Lookup(id string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[strings.ToLower(id)]
	return a, ok
}

// IDs returns the registered ids sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.actions))
	for id := range r.actions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Run parses actionString and executes each command in order. The returned
// slice holds the failures of individual commands; a failure never stops the
// remaining commands. Unknown ids are skipped and do not produce an error.
func (r *Registry) Run(ctx context.Context, env *Env, msg Message, p host.Player, actionString string) []error {
	cmds := actionstr.Parse(actionString)
	if len(cmds) == 0 {
		return nil
	}

	depth := depthFrom(ctx) + 1
	ctx = withDepth(ctx, depth)

	var errs []error
	for _, cmd := range cmds {
		if err := r.dispatch(ctx, env, msg, p, cmd, depth); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// RunAll runs several action strings in order with the same isolation rules.
func (r *Registry) RunAll(ctx context.Context, env *Env, msg Message, p host.Player, actionStrings []string) []error {
	var errs []error
	for _, s := range actionStrings {
		errs = append(errs, r.Run(ctx, env, msg, p, s)...)
	}
	return errs
}

func (r *Registry) dispatch(ctx context.Context, env *Env, msg Message, p host.Player, cmd actionstr.Command, depth int) (err error) {
	log := env.logger()
	out := Outcome{Message: msg, PlayerUID: playerUID(p), Command: cmd}
	defer func() {
		out.Err = err
		if env.Observer != nil {
			env.Observer(out)
		}
	}()

	a, ok := r.Lookup(cmd.ID)
	if !ok {
		log.Warn("unknown action id, skipping",
			"action", cmd.ID,
			"quest", msg.QuestID,
			"player", out.PlayerUID)
		out.Skipped = true
		return nil
	}

	if depth > env.maxDepth() {
		err = &Error{
			Code:    ErrCodeDepthExceeded,
			Action:  cmd.ID,
			Message: fmt.Sprintf("nested action depth %d exceeds %d", depth, env.maxDepth()),
		}
		r.report(env, msg, p, cmd, err)
		return err
	}

	err = r.execute(ctx, env, msg, p, a, cmd)
	if err != nil {
		r.report(env, msg, p, cmd, err)
		return err
	}
	log.Debug("action executed",
		"action", cmd.ID,
		"quest", msg.QuestID,
		"player", out.PlayerUID,
		"depth", depth)
	return nil
}

func (r *Registry) execute(ctx context.Context, env *Env, msg Message, p host.Player, a Action, cmd actionstr.Command) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{
				Code:    ErrCodeHandlerPanic,
				Action:  cmd.ID,
				Message: fmt.Sprintf("panic: %v", rec),
			}
		}
	}()
	return a.Execute(ctx, env, msg, p, cmd.Args)
}

func (r *Registry) report(env *Env, msg Message, p host.Player, cmd actionstr.Command, err error) {
	env.logger().Error("action failed",
		"action", cmd.ID,
		"args", cmd.String(),
		"quest", msg.QuestID,
		"player", playerUID(p),
		"error", err)
	if env.NotifyErrors {
		env.Notify(p, env.Text(ErrorNotice))
	}
}
