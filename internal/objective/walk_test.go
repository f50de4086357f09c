package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quester/internal/attr"
	"github.com/roach88/quester/internal/host"
	"github.com/roach88/quester/internal/testutil"
)

func walkHave(p *testutil.Player) float64 {
	return attr.GetFloat(p.Attrs, walkKey("q1", 0).With("have"))
}

func newWalker(t *testing.T) (*testutil.Player, *Context, []string) {
	t.Helper()
	w := testutil.NewWorld()
	p := w.AddPlayer("p1")
	reg := NewRegistry()
	RegisterBuiltins(reg)
	args := []string{"q1", "100"}
	c := NewContext(reg, w, "q1", []Descriptor{{Type: "walkdistance", ID: "walk", Args: args}}, 0)
	walkDistance{}.Start(c, p, args)
	return p, c, args
}

func TestWalkDistance_TeleportGuard(t *testing.T) {
	p, c, args := newWalker(t)
	walk := walkDistance{}

	p.MoveBy(25, 0)
	assert.False(t, walk.Tick(c, p, args))
	assert.Zero(t, walkHave(p))

	p.MoveBy(5, 0)
	assert.True(t, walk.Tick(c, p, args))
	p.MoveBy(0, 5)
	assert.True(t, walk.Tick(c, p, args))

	assert.InDelta(t, 10.0, walkHave(p), 1e-9)
}

func TestWalkDistance_JitterGuard(t *testing.T) {
	p, c, args := newWalker(t)
	walk := walkDistance{}

	p.MoveBy(0.03, 0)
	assert.False(t, walk.Tick(c, p, args))
	assert.Zero(t, walkHave(p))
}

func TestWalkDistance_DisqualifiedMovementOnlyMovesReference(t *testing.T) {
	tests := []struct {
		name string
		move host.MovementState
	}{
		{"flying", host.MovementState{Controlled: true, Flying: true}},
		{"mounted", host.MovementState{Controlled: true, OnGround: true, Mounted: true}},
		{"airborne", host.MovementState{Controlled: true}},
		{"uncontrolled", host.MovementState{OnGround: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c, args := newWalker(t)
			walk := walkDistance{}

			p.Move = tt.move
			p.MoveBy(5, 0)
			walk.Tick(c, p, args)
			assert.Zero(t, walkHave(p))

			// reference moved with the player, so walking on resumes from here
			p.Move = host.MovementState{Controlled: true, OnGround: true}
			p.MoveBy(3, 0)
			walk.Tick(c, p, args)
			assert.InDelta(t, 3.0, walkHave(p), 1e-9)
		})
	}
}

func TestWalkDistance_SwimmingCounts(t *testing.T) {
	p, c, args := newWalker(t)
	p.Move = host.MovementState{Controlled: true, Swimming: true}

	p.MoveBy(4, 0)
	walkDistance{}.Tick(c, p, args)

	assert.InDelta(t, 4.0, walkHave(p), 1e-9)
}

func TestWalkDistance_ClampsAndCompletes(t *testing.T) {
	w := testutil.NewWorld()
	p := w.AddPlayer("p1")
	args := []string{"q1", "0", "12"}
	c := NewContext(nil, w, "q1", nil, 0)
	walk := walkDistance{}
	walk.Start(c, p, args)

	for range 3 {
		p.MoveBy(5, 0)
		walk.Tick(c, p, args)
	}

	assert.InDelta(t, 12.0, walkHave(p), 1e-9)
	assert.True(t, walk.IsCompletable(c, p, args))
	assert.Equal(t, []int{12, 12}, walk.Progress(c, p, args))

	p.MoveBy(5, 0)
	assert.False(t, walk.Tick(c, p, args))
}

func TestWalkDistance_FirstTickSetsReference(t *testing.T) {
	w := testutil.NewWorld()
	p := w.AddPlayer("p1")
	args := []string{"q1", "50"}
	c := NewContext(nil, w, "q1", nil, 0)
	walk := walkDistance{}

	p.MoveBy(5, 0)
	assert.False(t, walk.Tick(c, p, args))
	p.MoveBy(5, 0)
	assert.True(t, walk.Tick(c, p, args))
	assert.InDelta(t, 5.0, walkHave(p), 1e-9)
}

func TestWalkDistance_MalformedArgs(t *testing.T) {
	p, c, _ := newWalker(t)
	walk := walkDistance{}

	for _, args := range [][]string{nil, {"q1"}, {"q1", "far"}, {"q1", "-1", "10"}, {"q1", "0"}, {"q1", "NaN"}, {"q1", "+Inf"}} {
		assert.False(t, walk.IsCompletable(c, p, args), "%v", args)
		assert.False(t, walk.Tick(c, p, args), "%v", args)
	}
}

func TestResetWalkDistance(t *testing.T) {
	p, c, args := newWalker(t)
	walk := walkDistance{}
	p.MoveBy(5, 0)
	walk.Tick(c, p, args)
	require.Positive(t, walkHave(p))

	require.NoError(t, resetWalkDistance(t.Context(), nil, actionMsg("q1"), p, []string{"q1"}))

	assert.Zero(t, walkHave(p))
	assert.False(t, attr.Has(p.Attrs, walkKey("q1", 0).With("hasref")))
}

func TestWalkDistance_PauseDropsGatedMovement(t *testing.T) {
	p, c, args := newWalker(t)
	walk := walkDistance{}

	p.MoveBy(8, 0)
	walk.Pause(c, p, args)
	p.MoveBy(3, 0)
	require.True(t, walk.Tick(c, p, args))

	assert.InDelta(t, 3.0, walkHave(p), 1e-9)
}
