package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_DirtyTracking(t *testing.T) {
	tr := NewTree()
	tr.Set("a", IntValue(1))
	tr.Set("b", StringValue("x"))

	assert.Equal(t, []string{"a", "b"}, tr.Dirty())

	tr.ClearDirty()
	assert.Empty(t, tr.Dirty())

	tr.Remove("missing")
	assert.Empty(t, tr.Dirty(), "removing an absent key is not a change")

	tr.Remove("a")
	tr.MarkDirty("b")
	assert.Equal(t, []string{"a", "b"}, tr.Dirty())
	assert.Equal(t, 1, tr.Len())
}

func TestTree_SnapshotRestore(t *testing.T) {
	tr := NewTree()
	tr.Set("k", FloatValue(2.5))

	snap := tr.Snapshot()
	tr.Set("k", FloatValue(9))

	other := NewTree()
	other.Restore(snap)

	v, ok := other.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2.5, v.Float)
	assert.Empty(t, other.Dirty())
}

func TestTyped_Accessors(t *testing.T) {
	tr := NewTree()
	k := For("walkdist", "q").InSlot(0).With("have")

	assert.Equal(t, 0.0, GetFloat(tr, k))
	SetFloat(tr, k, 3.5)
	assert.Equal(t, 3.5, GetFloat(tr, k))
	assert.Equal(t, 3, GetInt(tr, k))

	c := For("randkill", "q").InSlot(0).With("have")
	assert.Equal(t, 2, AddInt(tr, c, 2))
	assert.Equal(t, 5, AddInt(tr, c, 3))

	b := For("fired", "q").InSlot(1)
	assert.False(t, GetBool(tr, b))
	SetBool(tr, b, true)
	assert.True(t, GetBool(tr, b))
	assert.True(t, Has(tr, b))
	Delete(tr, b)
	assert.False(t, Has(tr, b))
}

func TestClearQuest(t *testing.T) {
	tr := NewTree()
	SetInt(tr, For("randkill", "q1").InSlot(0).With("have"), 1)
	SetBool(tr, For("fired", "q1").InSlot(0), true)
	SetInt(tr, For("randkill", "q2").InSlot(0).With("have"), 1)
	tr.Set("host:unrelated", BoolValue(true))

	n := ClearQuest(tr, "q1")

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"host:unrelated", "quester:randkill:q2:slot0:have"}, tr.Keys())
}

func TestClearQuest_NormalisesQuestID(t *testing.T) {
	tr := NewTree()
	SetInt(tr, For("randkill", "cafe\u0301").InSlot(0).With("have"), 1)
	SetBool(tr, For("fired", "caf\u00e9").InSlot(0), true)

	n := ClearQuest(tr, "cafe\u0301")

	assert.Equal(t, 2, n)
	assert.Empty(t, tr.Keys())
}

func TestClearQuest_EmptyIDIsNoop(t *testing.T) {
	tr := NewTree()
	SetBool(tr, MigrationMarker, true)

	assert.Equal(t, 0, ClearQuest(tr, ""))
	assert.True(t, GetBool(tr, MigrationMarker))
}

func TestValue_Conversions(t *testing.T) {
	i, ok := StringValue(" 42 ").AsInt()
	assert.True(t, ok)
	assert.EqualValues(t, 42, i)

	_, ok = StringValue("nope").AsFloat()
	assert.False(t, ok)

	b, ok := IntValue(3).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	kind, text := FloatValue(1.25).Encode()
	v, err := Decode(kind, text)
	require.NoError(t, err)
	assert.Equal(t, FloatValue(1.25), v)

	_, err = Decode("matrix", "1")
	assert.Error(t, err)
}
