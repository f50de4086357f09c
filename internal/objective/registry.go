package objective

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/quester/internal/host"
)

// Registry maps lower-case objective type ids to evaluators.
type Registry struct {
	mu         sync.RWMutex
	objectives map[string]Objective
}

// NewRegistry returns an empty registry. Builtins are added by
// RegisterBuiltins.
func NewRegistry() *Registry {
	return &Registry{objectives: make(map[string]Objective)}
}

// Register adds an evaluator under a case-insensitive id. Duplicate and
// empty ids are rejected.
func (r *Registry) Register(id string, o Objective) error {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return fmt.Errorf("register objective: empty id")
	}
	if o == nil {
		return fmt.Errorf("register objective %q: nil evaluator", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objectives[id]; exists {
		return fmt.Errorf("register objective %q: already registered", id)
	}
	r.objectives[id] = o
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(id string, o Objective) {
	if err := r.Register(id, o); err != nil {
		panic(err)
	}
}

// Lookup finds the evaluator for id, ignoring case.
func (r *Registry) Lookup(id string) (Objective, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.objectives[strings.ToLower(id)]
	return o, ok
}

// IDs returns the registered ids sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.objectives))
	for id := range r.objectives {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsPassive reports whether an objective type is neither tick- nor
// event-driven. Passive objectives are re-checked by the periodic sweep.
func (r *Registry) IsPassive(id string) bool {
	o, ok := r.Lookup(id)
	if !ok {
		return false
	}
	switch o.(type) {
	case Ticker, KillListener, BlockListener, EntityInteractListener:
		return false
	}
	return true
}

// IsGate reports whether the descriptor gates another objective, and which.
func (r *Registry) IsGate(d Descriptor) (string, bool) {
	o, ok := r.Lookup(d.Type)
	if !ok {
		return "", false
	}
	g, ok := o.(Gate)
	if !ok {
		return "", false
	}
	return g.GateTarget(d.Args)
}

// IsCompletable evaluates the objective c points at. Unknown types are
// logged and read as not completable.
func (r *Registry) IsCompletable(c *Context, p host.Player) bool {
	o, ok := r.resolve(c)
	if !ok {
		return false
	}
	return o.IsCompletable(c, p, c.Objective.Args)
}

// Progress evaluates the progress of the objective c points at, always as
// {have, need}.
func (r *Registry) Progress(c *Context, p host.Player) (have, need int) {
	o, ok := r.resolve(c)
	if !ok {
		return 0, 1
	}
	pr := o.Progress(c, p, c.Objective.Args)
	switch len(pr) {
	case 0:
		return 0, 1
	case 1:
		return pr[0], 1
	default:
		return pr[0], pr[1]
	}
}

func (r *Registry) resolve(c *Context) (Objective, bool) {
	o, ok := r.Lookup(c.Objective.Type)
	if !ok {
		c.logger().Debug("unknown objective type",
			"objective", c.Objective.Type,
			"quest", c.QuestID,
			"index", c.Index)
	}
	return o, ok
}
