package attr

import "golang.org/x/text/unicode/norm"

// Typed accessors over a Store. Missing or unconvertible values read as the
// zero value.

// Has reports whether k is set.
func Has(s Store, k Key) bool {
	_, ok := s.Get(k.String())
	return ok
}

// GetInt reads k as an integer.
func GetInt(s Store, k Key) int {
	v, ok := s.Get(k.String())
	if !ok {
		return 0
	}
	i, _ := v.AsInt()
	return int(i)
}

// SetInt stores i at k.
func SetInt(s Store, k Key, i int) {
	s.Set(k.String(), IntValue(int64(i)))
}

// AddInt adds delta to the stored integer and returns the new value.
func AddInt(s Store, k Key, delta int) int {
	n := GetInt(s, k) + delta
	SetInt(s, k, n)
	return n
}

// GetFloat reads k as a float.
func GetFloat(s Store, k Key) float64 {
	v, ok := s.Get(k.String())
	if !ok {
		return 0
	}
	f, _ := v.AsFloat()
	return f
}

// SetFloat stores f at k.
func SetFloat(s Store, k Key, f float64) {
	s.Set(k.String(), FloatValue(f))
}

// GetBool reads k as a boolean.
func GetBool(s Store, k Key) bool {
	v, ok := s.Get(k.String())
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}

// SetBool stores b at k.
func SetBool(s Store, k Key, b bool) {
	s.Set(k.String(), BoolValue(b))
}

// GetString reads k as a string.
func GetString(s Store, k Key) string {
	v, ok := s.Get(k.String())
	if !ok {
		return ""
	}
	return v.String()
}

// SetString stores str at k.
func SetString(s Store, k Key, str string) {
	s.Set(k.String(), StringValue(str))
}

// Delete removes k.
func Delete(s Store, k Key) {
	s.Remove(k.String())
}

// ClearQuest removes every engine-owned key scoped to questID and returns how
// many were removed.
func ClearQuest(s Store, questID string) int {
	if questID == "" {
		return 0
	}
	questID = norm.NFC.String(questID)
	n := 0
	for _, raw := range s.Keys() {
		k, ok := ParseKey(raw)
		if !ok || k.Quest != questID {
			continue
		}
		s.Remove(raw)
		n++
	}
	return n
}
