package objective

import (
	"strconv"
	"strings"

	"github.com/roach88/quester/internal/host"
)

// Day is [DayStart, DayEnd) in game hours.
const (
	DayStart = 6.0
	DayEnd   = 18.0
)

// timeOfDay: <day|night|start,end> [objectiveId]
type timeOfDay struct{}

func parseHours(mode string) (start, end float64, ok bool) {
	switch strings.ToLower(mode) {
	case "day":
		return DayStart, DayEnd, true
	case "night":
		return DayEnd, DayStart, true
	}
	lo, hi, found := strings.Cut(mode, ",")
	if !found {
		return 0, 0, false
	}
	start, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	end, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err1 != nil || err2 != nil || start < 0 || start > 24 || end < 0 || end > 24 {
		return 0, 0, false
	}
	return start, end, true
}

// inWindow handles windows that wrap past midnight.
func inWindow(h, start, end float64) bool {
	if start <= end {
		return h >= start && h < end
	}
	return h >= start || h < end
}

func (timeOfDay) IsCompletable(c *Context, _ host.Player, args []string) bool {
	mode, ok := argAt(args, 0)
	if !ok || c.World == nil {
		return false
	}
	start, end, ok := parseHours(mode)
	if !ok {
		return false
	}
	return inWindow(c.World.HourOfDay(), start, end)
}

func (t timeOfDay) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(t.IsCompletable(c, p, args))
}

func (timeOfDay) GateTarget(args []string) (string, bool) {
	return argAt(args, 1)
}

// landClaim: <claimNameOrWildcard> [objectiveId]
type landClaim struct{}

func (landClaim) IsCompletable(c *Context, p host.Player, args []string) bool {
	pattern, ok := argAt(args, 0)
	if !ok || c.World == nil {
		return false
	}
	name, ok := c.World.ClaimAt(p.Position())
	if !ok {
		return false
	}
	return host.MatchCode(pattern, name)
}

func (l landClaim) Progress(c *Context, p host.Player, args []string) []int {
	return boolProgress(l.IsCompletable(c, p, args))
}

func (landClaim) GateTarget(args []string) (string, bool) {
	return argAt(args, 1)
}
