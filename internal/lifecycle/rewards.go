package lifecycle

import (
	"slices"

	"github.com/roach88/quester/internal/quest"
)

// SampleRewards draws min(SelectAmount, len(Items)) distinct rewards from the
// pool, each draw weighted by Weight. draw must return values in [0, 1).
func SampleRewards(pool quest.RandomPool, draw func() float64) []quest.Reward {
	n := min(pool.SelectAmount, len(pool.Items))
	if n <= 0 {
		return nil
	}
	remaining := slices.Clone(pool.Items)
	out := make([]quest.Reward, 0, n)
	for range n {
		total := 0.0
		for _, r := range remaining {
			total += weight(r)
		}
		pick := len(remaining) - 1
		u := draw() * total
		for i, r := range remaining {
			u -= weight(r)
			if u < 0 {
				pick = i
				break
			}
		}
		out = append(out, remaining[pick])
		remaining = slices.Delete(remaining, pick, pick+1)
	}
	return out
}

func weight(r quest.Reward) float64 {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}
