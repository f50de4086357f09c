package attr

import "strings"

// MigrationMarker records that legacy keys were already migrated. Its quest
// segment is empty so no ClearQuest call can reach it.
var MigrationMarker = For("migrated", "").With("v1")

// legacyFeatures maps feature names from older key generations onto the
// names this namespace uses.
var legacyFeatures = map[string]string{
	"walkdistance":       "walkdist",
	"randomkill":         "randkill",
	"temporalstorm":      "tempstorm",
	"interactwithentity": "interactentity",
	"sequence":           "seq",
	"firedobjective":     "fired",
}

// Migrate moves keys from legacy namespaces into Namespace once per store.
// When a key exists under both generations the current one wins and the
// legacy copy is dropped. It returns the number of keys moved.
func Migrate(s Store, legacyNamespaces []string) int {
	if GetBool(s, MigrationMarker) {
		return 0
	}

	moved := 0
	for _, raw := range s.Keys() {
		for _, ns := range legacyNamespaces {
			if ns == "" || ns == Namespace || !strings.HasPrefix(raw, ns+":") {
				continue
			}
			feature, tail, _ := strings.Cut(raw[len(ns)+1:], ":")
			if renamed, ok := legacyFeatures[feature]; ok {
				feature = renamed
			}
			target := Namespace + ":" + feature
			if tail != "" {
				target += ":" + tail
			}

			v, _ := s.Get(raw)
			if _, exists := s.Get(target); !exists {
				s.Set(target, v)
				moved++
			}
			s.Remove(raw)
			break
		}
	}

	SetBool(s, MigrationMarker, true)
	return moved
}
