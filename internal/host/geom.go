package host

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec3 is a world position.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Dist is the euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	d := v.Sub(o)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// DistXZ ignores the vertical axis.
func (v Vec3) DistXZ(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// BlockPos is an integer block coordinate.
type BlockPos struct {
	X, Y, Z int
}

// Round converts a world position to the block containing it.
func Round(v Vec3) BlockPos {
	return BlockPos{int(math.Floor(v.X)), int(math.Floor(v.Y)), int(math.Floor(v.Z))}
}

// Center returns the centre of the block.
func (b BlockPos) Center() Vec3 {
	return Vec3{float64(b.X) + 0.5, float64(b.Y) + 0.5, float64(b.Z) + 0.5}
}

// String renders "x,y,z", the form quest arguments use.
func (b BlockPos) String() string {
	return fmt.Sprintf("%d,%d,%d", b.X, b.Y, b.Z)
}

// ParseBlockPos parses "x,y,z". Fractional components are rounded to the
// nearest block.
func ParseBlockPos(s string) (BlockPos, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return BlockPos{}, false
	}
	var c [3]int
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return BlockPos{}, false
		}
		c[i] = int(math.Round(f))
	}
	return BlockPos{c[0], c[1], c[2]}, true
}

// ItemStack is a quantity of one item code.
type ItemStack struct {
	Code     string
	Quantity int
}

// MatchCode matches a code against a pattern. A trailing '*' matches any
// suffix; a lone "*" matches everything.
func MatchCode(pattern, code string) bool {
	if pattern == "" {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(code, prefix)
	}
	return pattern == code
}
