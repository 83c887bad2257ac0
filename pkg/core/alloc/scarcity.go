package alloc

import "github.com/assortlab/skualloc/pkg/core/model"

// ClassifyScarcity labels each SKU scarce when its supply cannot give every
// store at least one unit (OrdQty < store count). The label biases priority
// bonuses only; it never mutates supply.
func ClassifyScarcity(skus []model.SKU, storeCount int) []model.SKU {
	out := make([]model.SKU, len(skus))
	copy(out, skus)
	for i := range out {
		out[i].Scarce = out[i].OrdQty < storeCount
	}
	return out
}
