// Package tiering ranks stores by their sales-volume proxy and partitions
// them into ordered tiers, each carrying a per-SKU allocation cap.
package tiering

import (
	"math"
	"sort"

	"github.com/assortlab/skualloc/pkg/core/model"
)

const ratioTolerance = 1e-6

// Classify sorts stores descending by QtySum and assigns each to exactly one
// tier: the first ceil(ratio_1*N) stores to tier 1, the next ceil(ratio_2*N)
// to tier 2, and so on, with the final tier absorbing any rounding
// remainder. Ties in QtySum keep input order. The returned slice is in
// ranked order; the input is not mutated.
func Classify(stores []model.Store, tiers []model.TierSpec) ([]model.Store, error) {
	if len(tiers) == 0 {
		return nil, model.NewConfigError("no tiers configured")
	}

	sum := 0.0
	for _, t := range tiers {
		sum += t.Ratio
	}
	if math.Abs(sum-1.0) > ratioTolerance {
		return nil, model.NewConfigError("tier ratios sum to %.4f, want 1.0", sum)
	}

	ranked := make([]model.Store, len(stores))
	copy(ranked, stores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QtySum > ranked[j].QtySum
	})

	n := len(ranked)
	next := 0
	for ti, spec := range tiers {
		count := int(math.Ceil(spec.Ratio * float64(n)))
		if ti == len(tiers)-1 {
			// Last tier absorbs the rounding remainder.
			count = n - next
		}
		if count > n-next {
			count = n - next
		}
		if count == 0 && next < n {
			return nil, model.NewConfigError("tier %q would hold no stores while %d remain unassigned", spec.Name, n-next)
		}
		for i := 0; i < count; i++ {
			ranked[next].Tier = ti + 1
			ranked[next].MaxPerSKU = spec.MaxSKULimit
			next++
		}
	}

	return ranked, nil
}

// Counts returns the number of stores per tier, indexed by ordinal tier.
func Counts(stores []model.Store) map[int]int {
	counts := make(map[int]int)
	for _, s := range stores {
		counts[s.Tier]++
	}
	return counts
}
