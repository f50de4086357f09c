package quest

import (
	"slices"
	"sync"
)

// Registry holds the loaded definitions. Reads are concurrent; Replace swaps
// the whole set atomically for reloads.
type Registry struct {
	mu     sync.RWMutex
	quests map[string]*Definition
}

// NewRegistry returns a registry holding defs.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{quests: make(map[string]*Definition)}
	r.Replace(defs)
	return r
}

// Replace installs defs as the complete definition set.
func (r *Registry) Replace(defs []Definition) {
	next := make(map[string]*Definition, len(defs))
	for i := range defs {
		d := defs[i]
		next[d.ID] = &d
	}
	r.mu.Lock()
	r.quests = next
	r.mu.Unlock()
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.quests[id]
	return d, ok
}

// IDs returns the quest ids sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.quests))
	for id := range r.quests {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns every definition ordered by id.
func (r *Registry) All() []*Definition {
	ids := r.IDs()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.quests[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Len is the number of loaded definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quests)
}
