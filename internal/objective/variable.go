package objective

import (
	"strconv"

	"github.com/roach88/quester/internal/host"
)

// checkVariable: <attributeKey> <expected>
type checkVariable struct{}

func (checkVariable) IsCompletable(_ *Context, p host.Player, args []string) bool {
	key, ok := argAt(args, 0)
	if !ok || len(args) < 2 {
		return false
	}
	v, ok := p.Attributes().Get(key)
	if !ok {
		return false
	}
	return v.String() == args[1]
}

func (cv checkVariable) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(cv.IsCompletable(c, p, args))
}

// intCompare: <attributeKey> <op> <value>, op one of == != < <= > >=.
// A missing attribute reads as 0.
type intCompare struct{}

func (intCompare) IsCompletable(_ *Context, p host.Player, args []string) bool {
	key, ok := argAt(args, 0)
	if !ok {
		return false
	}
	op, ok := argAt(args, 1)
	if !ok {
		return false
	}
	want, ok := argAt(args, 2)
	if !ok {
		return false
	}
	rhs, err := strconv.ParseInt(want, 10, 64)
	if err != nil {
		return false
	}

	var lhs int64
	if v, found := p.Attributes().Get(key); found {
		if lhs, ok = v.AsInt(); !ok {
			return false
		}
	}

	switch op {
	case "==", "=":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	case "<":
		return lhs < rhs
	case "<=":
		return lhs <= rhs
	case ">":
		return lhs > rhs
	case ">=":
		return lhs >= rhs
	default:
		return false
	}
}

func (ic intCompare) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(ic.IsCompletable(c, p, args))
}
