package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCode(t *testing.T) {
	tests := []struct {
		pattern, code string
		want          bool
	}{
		{"game:wolf-male", "game:wolf-male", true},
		{"game:wolf-*", "game:wolf-female", true},
		{"game:wolf-*", "game:bear", false},
		{"*", "anything", true},
		{"", "game:wolf", false},
		{"game:wolf", "game:wolf-male", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchCode(tt.pattern, tt.code), "%s vs %s", tt.pattern, tt.code)
	}
}

func TestParseBlockPos(t *testing.T) {
	p, ok := ParseBlockPos(" 10, 64 ,-3 ")
	assert.True(t, ok)
	assert.Equal(t, BlockPos{10, 64, -3}, p)
	assert.Equal(t, "10,64,-3", p.String())

	p, ok = ParseBlockPos("1.6,2.2,3")
	assert.True(t, ok)
	assert.Equal(t, BlockPos{2, 2, 3}, p)

	for _, bad := range []string{"", "1,2", "a,b,c", "1,2,3,4"} {
		_, ok := ParseBlockPos(bad)
		assert.False(t, ok, bad)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, BlockPos{-1, 0, 3}, Round(Vec3{-0.5, 0.2, 3.99}))
}

func TestMovementState_CanAccumulateWalk(t *testing.T) {
	assert.True(t, MovementState{Controlled: true, OnGround: true}.CanAccumulateWalk())
	assert.True(t, MovementState{Controlled: true, Swimming: true}.CanAccumulateWalk())
	assert.False(t, MovementState{Controlled: true}.CanAccumulateWalk(), "airborne")
	assert.False(t, MovementState{Controlled: true, OnGround: true, Flying: true}.CanAccumulateWalk())
	assert.False(t, MovementState{Controlled: true, OnGround: true, Mounted: true}.CanAccumulateWalk())
	assert.False(t, MovementState{OnGround: true}.CanAccumulateWalk())
}
