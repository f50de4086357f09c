package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"quest only", For("walkdist", "q1"), "quester:walkdist:q1"},
		{"slot and field", For("randkill", "q1").InSlot(0).With("need"), "quester:randkill:q1:slot0:need"},
		{"objective", For("killnear", "q1").Obj("wolves").With("have"), "quester:killnear:q1:obj:wolves:have"},
		{"colon escaped", For("seq", "mod:quest").With("step"), "quester:seq:mod%3Aquest:step"},
		{"marker-like field", For("seq", "q").With("slot3"), "quester:seq:q:%slot3"},
		{"obj-like field", For("seq", "q").With("obj"), "quester:seq:q:%obj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKey_DistinctTuplesNeverCollide(t *testing.T) {
	keys := []Key{
		For("f", "q").InSlot(0),
		For("f", "q").With("slot0"),
		For("f", "q").Obj("slot0"),
		For("f", "q").Obj("a").With("b"),
		For("f", "q").With("obj"),
		For("f", "q:obj").With("a"),
		For("f", "q").Obj("a:b"),
		For("f", "q%3A"),
		For("f", "q:"),
		For("f:q", ""),
	}

	seen := map[string]Key{}
	for _, k := range keys {
		s := k.String()
		if prev, dup := seen[s]; dup {
			t.Fatalf("%+v and %+v both render %q", prev, k, s)
		}
		seen[s] = k
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	keys := []Key{
		For("walkdist", "q1").InSlot(2).With("have"),
		For("killnear", "a:b").Obj("obj").With("slot1"),
		For("fired", "q").InSlot(7),
		For("interact", "").With("1,2,3"),
		For("seq", "100%").Obj("x"),
	}

	for _, k := range keys {
		got, ok := ParseKey(k.String())
		require.True(t, ok, "parse %q", k.String())
		assert.Equal(t, k, got)
	}
}

func TestParseKey_RejectsForeignKeys(t *testing.T) {
	for _, raw := range []string{"", "other:walkdist:q", "quester:only", "quester:f:q:a:b:c"} {
		_, ok := ParseKey(raw)
		assert.False(t, ok, raw)
	}
}

func TestKey_NormalisesUnicode(t *testing.T) {
	composed := For("seq", "caf\u00e9")
	decomposed := For("seq", "cafe\u0301")

	assert.Equal(t, composed.String(), decomposed.String())
}
