package attr

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Namespace prefixes every key the engine owns.
const Namespace = "quester"

const (
	objectiveMarker = "obj"
	slotPrefix      = "slot"
)

// Key is the typed form of an engine-owned attribute key:
//
//	quester:<feature>:<quest>[:obj:<objective>][:slot<N>][:<field>]
//
// Segments are NFC-normalised and escaped so that any two distinct keys
// render to distinct strings.
type Key struct {
	Feature   string
	Quest     string
	Objective string
	Slot      int
	HasSlot   bool
	Field     string
}

// For starts a key for a feature of a quest.
func For(feature, quest string) Key {
	return Key{Feature: feature, Quest: quest}
}

// Obj returns a copy scoped to an objective id.
func (k Key) Obj(id string) Key {
	k.Objective = id
	return k
}

// InSlot returns a copy scoped to a numeric slot.
func (k Key) InSlot(n int) Key {
	k.Slot = n
	k.HasSlot = true
	return k
}

// With returns a copy naming a field.
func (k Key) With(field string) Key {
	k.Field = field
	return k
}

// String renders the key in its stored form.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(Namespace)
	b.WriteByte(':')
	b.WriteString(escapeSegment(k.Feature))
	b.WriteByte(':')
	b.WriteString(escapeSegment(k.Quest))
	if k.Objective != "" {
		b.WriteByte(':')
		b.WriteString(objectiveMarker)
		b.WriteByte(':')
		b.WriteString(escapeSegment(k.Objective))
	}
	if k.HasSlot {
		b.WriteByte(':')
		b.WriteString(slotPrefix)
		b.WriteString(strconv.Itoa(k.Slot))
	}
	if k.Field != "" {
		b.WriteByte(':')
		b.WriteString(escapeSegment(k.Field))
	}
	return b.String()
}

// ParseKey is the inverse of Key.String. It reports false for keys outside
// the namespace or with an unexpected shape.
func ParseKey(raw string) (Key, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || parts[0] != Namespace {
		return Key{}, false
	}

	var k Key
	var ok bool
	if k.Feature, ok = unescapeSegment(parts[1]); !ok {
		return Key{}, false
	}
	if k.Quest, ok = unescapeSegment(parts[2]); !ok {
		return Key{}, false
	}

	rest := parts[3:]
	if len(rest) >= 2 && rest[0] == objectiveMarker {
		if k.Objective, ok = unescapeSegment(rest[1]); !ok || k.Objective == "" {
			return Key{}, false
		}
		rest = rest[2:]
	}
	if len(rest) > 0 && isSlotSegment(rest[0]) {
		n, err := strconv.Atoi(rest[0][len(slotPrefix):])
		if err != nil {
			return Key{}, false
		}
		k.Slot, k.HasSlot = n, true
		rest = rest[1:]
	}
	if len(rest) == 1 {
		if k.Field, ok = unescapeSegment(rest[0]); !ok || k.Field == "" {
			return Key{}, false
		}
		rest = rest[1:]
	}
	if len(rest) != 0 {
		return Key{}, false
	}
	return k, true
}

// escapeSegment normalises s and makes it unambiguous inside a key.
// '%' and ':' are percent-encoded. A segment that would read as a structural
// marker ("obj" or "slotN") gets a bare '%' prefix, which percent-encoding can
// never produce.
func escapeSegment(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, ":", "%3A")
	if s == objectiveMarker || isSlotSegment(s) {
		return "%" + s
	}
	return s
}

func unescapeSegment(s string) (string, bool) {
	if strings.HasPrefix(s, "%") && !strings.HasPrefix(s, "%25") && !strings.HasPrefix(s, "%3A") {
		s = s[1:]
		if s != objectiveMarker && !isSlotSegment(s) {
			return "", false
		}
		return s, true
	}
	s = strings.ReplaceAll(s, "%3A", ":")
	s = strings.ReplaceAll(s, "%25", "%")
	return s, true
}

func isSlotSegment(s string) bool {
	if !strings.HasPrefix(s, slotPrefix) || len(s) == len(slotPrefix) {
		return false
	}
	for _, r := range s[len(slotPrefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
