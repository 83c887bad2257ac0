package alloc

import (
	"sort"

	"github.com/assortlab/skualloc/pkg/core/model"
)

// FitUnits is Stage 2: it converts Stage 1 selections into actual units and
// then spreads leftover supply one unit at a time to stores that were not
// selected, maximizing the count of distinct SKUs each store can try on.
//
// Pass 1 walks (store, SKU) pairs by descending store priority, scarce SKUs
// first within a store, so high-priority stores and scarce SKUs are serviced
// before supply runs out mid-pass. Pass 2 walks SKUs with leftover supply
// (scarce first, then ascending remaining supply, then input order) and
// grants one unit per store in priority order to stores not holding the SKU.
//
// stores must already be in descending priority order. remaining is indexed
// like skus and is decremented in place. Returns the number of units added.
func FitUnits(a *model.Allocation, skus []model.SKU, stores []model.Store, sel *Selection, remaining []int) int {
	added := 0

	// Pass 1: one unit for every selected pair, while supply lasts.
	for j, st := range stores {
		if st.MaxPerSKU == 0 {
			continue
		}
		for _, i := range scarceFirst(skus) {
			if !sel.Picked[i][j] || remaining[i] <= 0 {
				continue
			}
			a.Add(st.ShopID, skus[i].Key(), 1)
			remaining[i]--
			added++
		}
	}

	// Pass 2: leftover supply goes to stores Stage 1 skipped.
	for _, i := range secondPassOrder(skus, remaining) {
		if remaining[i] <= 0 {
			continue
		}
		key := skus[i].Key()
		for j, st := range stores {
			if remaining[i] <= 0 {
				break
			}
			if st.MaxPerSKU == 0 || sel.Picked[i][j] || a.Qty(st.ShopID, key) > 0 {
				continue
			}
			a.Add(st.ShopID, key, 1)
			remaining[i]--
			added++
		}
	}

	return added
}

// scarceFirst returns SKU indices with scarce SKUs ahead of abundant ones,
// keeping input order within each class.
func scarceFirst(skus []model.SKU) []int {
	idx := orderedIndices(len(skus))
	sort.SliceStable(idx, func(a, b int) bool {
		return skus[idx[a]].Scarce && !skus[idx[b]].Scarce
	})
	return idx
}

// secondPassOrder is the documented Stage 2 second-pass tie-break: scarce
// SKUs first, then ascending remaining supply, then input order.
func secondPassOrder(skus []model.SKU, remaining []int) []int {
	idx := orderedIndices(len(skus))
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if skus[ia].Scarce != skus[ib].Scarce {
			return skus[ia].Scarce
		}
		return remaining[ia] < remaining[ib]
	})
	return idx
}

func orderedIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
