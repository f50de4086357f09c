package objective

import "github.com/roach88/quester/internal/host"

// hasItem: <codeOrWildcard> <requiredCount>
type hasItem struct{}

type hasItemArgs struct {
	pattern string
	need    int
}

func parseHasItem(args []string) (hasItemArgs, bool) {
	var a hasItemArgs
	var ok bool
	if a.pattern, ok = argAt(args, 0); !ok {
		return a, false
	}
	if a.need, ok = intAt(args, 1); !ok || a.need <= 0 {
		return a, false
	}
	return a, true
}

func countItems(stacks []host.ItemStack, pattern string) int {
	n := 0
	for _, s := range stacks {
		if host.MatchCode(pattern, s.Code) {
			n += s.Quantity
		}
	}
	return n
}

func (hasItem) IsCompletable(_ *Context, p host.Player, args []string) bool {
	a, ok := parseHasItem(args)
	if !ok {
		return false
	}
	return countItems(p.Inventory().Stacks(), a.pattern) >= a.need
}

func (hasItem) Progress(_ *Context, p host.Player, args []string) []int {
	a, ok := parseHasItem(args)
	if !ok {
		return []int{0, 0}
	}
	return []int{clamp(countItems(p.Inventory().Stacks(), a.pattern), a.need), a.need}
}

// wearing: <codeOrWildcard>
type wearing struct{}

func (wearing) IsCompletable(_ *Context, p host.Player, args []string) bool {
	pattern, ok := argAt(args, 0)
	if !ok {
		return false
	}
	for _, s := range p.Worn() {
		if host.MatchCode(pattern, s.Code) {
			return true
		}
	}
	return false
}

func (w wearing) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(w.IsCompletable(c, p, args))
}
