package objective

import (
	"math"
	"strconv"
	"strings"
)

// Argument helpers. Every parser reports ok=false instead of failing so that
// callers can map bad input to "not completable".

func argAt(args []string, i int) (string, bool) {
	if i < 0 || i >= len(args) {
		return "", false
	}
	s := strings.TrimSpace(args[i])
	return s, s != ""
}

func intAt(args []string, i int) (int, bool) {
	s, ok := argAt(args, i)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func floatAt(args []string, i int) (float64, bool) {
	s, ok := argAt(args, i)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func boolProgress(ok bool) []int {
	if ok {
		return []int{1, 1}
	}
	return []int{0, 1}
}

func clamp(have, need int) int {
	return max(0, min(have, need))
}
