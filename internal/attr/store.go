package attr

import (
	"maps"
	"slices"
)

// Store is the host-owned attribute tree of one player or entity.
//
// Set and Remove mark the key dirty for replication. MarkDirty is exposed for
// hosts that mutate values in place.
type Store interface {
	Get(key string) (Value, bool)
	Set(key string, v Value)
	Remove(key string)
	Keys() []string
	MarkDirty(key string)
}

// Tree is a map-backed Store with dirty tracking.
// It is not safe for concurrent use; the engine runs on a single thread.
type Tree struct {
	vals  map[string]Value
	dirty map[string]struct{}
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		vals:  make(map[string]Value),
		dirty: make(map[string]struct{}),
	}
}

// Get returns the value stored at key.
func (t *Tree) Get(key string) (Value, bool) {
	v, ok := t.vals[key]
	return v, ok
}

// Set stores v at key and marks it dirty.
func (t *Tree) Set(key string, v Value) {
	t.vals[key] = v
	t.dirty[key] = struct{}{}
}

// Remove deletes key. Removing a missing key is a no-op.
func (t *Tree) Remove(key string) {
	if _, ok := t.vals[key]; !ok {
		return
	}
	delete(t.vals, key)
	t.dirty[key] = struct{}{}
}

// Keys returns all keys in sorted order.
func (t *Tree) Keys() []string {
	return slices.Sorted(maps.Keys(t.vals))
}

// MarkDirty flags key for the next sync without changing it.
func (t *Tree) MarkDirty(key string) {
	t.dirty[key] = struct{}{}
}

// Dirty returns the keys changed since the last ClearDirty, sorted.
func (t *Tree) Dirty() []string {
	return slices.Sorted(maps.Keys(t.dirty))
}

// ClearDirty forgets pending changes, typically after the host replicated them.
func (t *Tree) ClearDirty() {
	clear(t.dirty)
}

// Len returns the number of stored keys.
func (t *Tree) Len() int {
	return len(t.vals)
}

// Snapshot copies every value.
func (t *Tree) Snapshot() map[string]Value {
	return maps.Clone(t.vals)
}

// Restore replaces the tree contents and clears the dirty set.
func (t *Tree) Restore(vals map[string]Value) {
	t.vals = maps.Clone(vals)
	if t.vals == nil {
		t.vals = make(map[string]Value)
	}
	clear(t.dirty)
}
