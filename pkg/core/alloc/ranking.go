package alloc

import (
	"math/rand"
	"sort"

	"github.com/assortlab/skualloc/pkg/core/model"
)

// RankStores assigns each store a priority score and returns the stores
// sorted descending by that score.
//
// The base score is rank-based: (N - rank) / N with rank being the 0-indexed
// position in descending QtySum order (the order stores arrive in after tier
// classification). The final score blends the base with seeded uniform
// noise:
//
//	score = (1-temperature)*base + temperature*uniform()
//
// temperature 0 is pure revenue order, 1 is pure random. The random source
// is seeded per scenario run so repeated runs reproduce identical rankings.
func RankStores(ranked []model.Store, temperature float64, seed int64) []model.Store {
	if temperature < 0 {
		temperature = 0
	}
	if temperature > 1 {
		temperature = 1
	}

	rng := rand.New(rand.NewSource(seed))
	n := len(ranked)

	out := make([]model.Store, n)
	copy(out, ranked)
	for i := range out {
		base := float64(n-i) / float64(n)
		out[i].Priority = (1-temperature)*base + temperature*rng.Float64()
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
