package lifecycle

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quester/internal/quest"
)

func TestSampleRewards_SelectMoreThanPool(t *testing.T) {
	pool := quest.RandomPool{
		SelectAmount: 5,
		Items: []quest.Reward{
			{Code: "gem-ruby", Amount: 1, Weight: 1},
			{Code: "gem-jade", Amount: 1, Weight: 3},
			{Code: "gem-onyx", Amount: 2, Weight: 0.5},
		},
	}

	for seed := range uint64(25) {
		r := rand.New(rand.NewPCG(seed, 7))
		got := SampleRewards(pool, r.Float64)

		require.Len(t, got, 3)
		seen := make(map[string]bool)
		for _, g := range got {
			assert.False(t, seen[g.Code], "duplicate %s with seed %d", g.Code, seed)
			seen[g.Code] = true
		}
	}
}

func TestSampleRewards_Weighted(t *testing.T) {
	pool := quest.RandomPool{
		SelectAmount: 1,
		Items: []quest.Reward{
			{Code: "common", Weight: 9},
			{Code: "rare", Weight: 1},
		},
	}

	assert.Equal(t, "common", SampleRewards(pool, func() float64 { return 0.5 })[0].Code)
	assert.Equal(t, "rare", SampleRewards(pool, func() float64 { return 0.95 })[0].Code)
}

func TestSampleRewards_Empty(t *testing.T) {
	assert.Nil(t, SampleRewards(quest.RandomPool{SelectAmount: 3}, func() float64 { return 0 }))
	assert.Nil(t, SampleRewards(quest.RandomPool{Items: []quest.Reward{{Code: "x"}}}, func() float64 { return 0 }))
}

func TestSampleRewards_ZeroWeightCountsAsOne(t *testing.T) {
	pool := quest.RandomPool{
		SelectAmount: 2,
		Items:        []quest.Reward{{Code: "a"}, {Code: "b"}},
	}
	got := SampleRewards(pool, func() float64 { return 0.99 })
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Code)
	assert.Equal(t, "a", got[1].Code)
}
