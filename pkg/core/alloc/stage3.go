package alloc

import "github.com/assortlab/skualloc/pkg/core/model"

// maxSweeps bounds the residual fill against pathological configurations.
// A sweep that allocates nothing terminates the loop long before this.
const maxSweeps = 10000

// FillResidual is Stage 3: it sweeps the store list in priority order and
// grants one more unit of any SKU with remaining supply to each store still
// below its tier cap for that SKU. Sweeps repeat until a full pass makes
// zero allocations, so on termination either every SKU's supply is
// exhausted or every store is at its cap for every SKU that still has
// supply.
//
// stores must already be in descending priority order. remaining is indexed
// like skus and is decremented in place. Returns the number of units added.
func FillResidual(a *model.Allocation, skus []model.SKU, stores []model.Store, remaining []int) int {
	added := 0
	for sweep := 0; sweep < maxSweeps; sweep++ {
		changed := false
		for _, st := range stores {
			for i, sk := range skus {
				if remaining[i] <= 0 {
					continue
				}
				key := sk.Key()
				if a.Qty(st.ShopID, key) >= st.MaxPerSKU {
					continue
				}
				a.Add(st.ShopID, key, 1)
				remaining[i]--
				added++
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return added
}
