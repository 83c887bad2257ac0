// Package analyzer computes diversity, balance and efficiency metrics on a
// finished allocation matrix. It consumes the matrix; it is never part of
// the decision logic.
package analyzer

import (
	"math"

	"github.com/assortlab/skualloc/pkg/core/model"
)

// StoreDiversity is the per-store coverage report.
type StoreDiversity struct {
	ShopID string
	Tier   int

	// Colors and Sizes count distinct attributes with quantity > 0.
	Colors int
	Sizes  int

	// SKUs counts distinct SKUs held; Units is the total quantity.
	SKUs  int
	Units int
}

// TierBalance summarizes how evenly units landed within one tier.
type TierBalance struct {
	Tier      int
	Stores    int
	MinUnits  int
	MaxUnits  int
	MeanUnits float64
	StdDev    float64
}

// Report is the full per-run metrics bundle handed to reporting
// collaborators.
type Report struct {
	TotalSupply    int
	TotalAllocated int
	AllocationRate float64

	// StoresServed counts stores that received at least one unit.
	StoresServed int

	// AvgColorCoverage / AvgSizeCoverage are mean per-store coverage
	// ratios against the style's attribute counts (zero-supply SKUs
	// excluded from the denominators).
	AvgColorCoverage float64
	AvgSizeCoverage  float64

	StoreDiversity []StoreDiversity
	TierBalance    []TierBalance
}

// Analyze builds the report for one run. stores and skus must be the slices
// the allocation was produced from so ordering stays deterministic.
func Analyze(a *model.Allocation, skus []model.SKU, stores []model.Store) Report {
	totalColors := len(distinctColors(skus))
	totalSizes := len(distinctSizes(skus))

	r := Report{}
	for _, sk := range skus {
		r.TotalSupply += sk.OrdQty
	}
	r.TotalAllocated = a.Total()
	if r.TotalSupply > 0 {
		r.AllocationRate = float64(r.TotalAllocated) / float64(r.TotalSupply)
	}

	colorRatioSum, sizeRatioSum := 0.0, 0.0
	for _, st := range stores {
		d := storeDiversity(a, skus, st)
		if d.Units > 0 {
			r.StoresServed++
		}
		if totalColors > 0 {
			colorRatioSum += float64(d.Colors) / float64(totalColors)
		}
		if totalSizes > 0 {
			sizeRatioSum += float64(d.Sizes) / float64(totalSizes)
		}
		r.StoreDiversity = append(r.StoreDiversity, d)
	}
	if len(stores) > 0 {
		r.AvgColorCoverage = colorRatioSum / float64(len(stores))
		r.AvgSizeCoverage = sizeRatioSum / float64(len(stores))
	}

	r.TierBalance = tierBalance(a, stores)
	return r
}

func storeDiversity(a *model.Allocation, skus []model.SKU, st model.Store) StoreDiversity {
	d := StoreDiversity{ShopID: st.ShopID, Tier: st.Tier}
	colors := make(map[string]bool)
	sizes := make(map[string]bool)
	for _, sk := range skus {
		q := a.Qty(st.ShopID, sk.Key())
		if q == 0 {
			continue
		}
		colors[sk.Color] = true
		sizes[sk.Size] = true
		d.SKUs++
		d.Units += q
	}
	d.Colors = len(colors)
	d.Sizes = len(sizes)
	return d
}

func tierBalance(a *model.Allocation, stores []model.Store) []TierBalance {
	unitsByTier := make(map[int][]int)
	maxTier := 0
	for _, st := range stores {
		unitsByTier[st.Tier] = append(unitsByTier[st.Tier], a.StoreTotal(st.ShopID))
		if st.Tier > maxTier {
			maxTier = st.Tier
		}
	}

	var out []TierBalance
	for t := 1; t <= maxTier; t++ {
		units, ok := unitsByTier[t]
		if !ok {
			continue
		}
		tb := TierBalance{Tier: t, Stores: len(units), MinUnits: units[0], MaxUnits: units[0]}
		sum := 0
		for _, u := range units {
			if u < tb.MinUnits {
				tb.MinUnits = u
			}
			if u > tb.MaxUnits {
				tb.MaxUnits = u
			}
			sum += u
		}
		tb.MeanUnits = float64(sum) / float64(len(units))
		variance := 0.0
		for _, u := range units {
			d := float64(u) - tb.MeanUnits
			variance += d * d
		}
		tb.StdDev = math.Sqrt(variance / float64(len(units)))
		out = append(out, tb)
	}
	return out
}

func distinctColors(skus []model.SKU) map[string]bool {
	out := make(map[string]bool)
	for _, sk := range skus {
		if sk.OrdQty > 0 {
			out[sk.Color] = true
		}
	}
	return out
}

func distinctSizes(skus []model.SKU) map[string]bool {
	out := make(map[string]bool)
	for _, sk := range skus {
		if sk.OrdQty > 0 {
			out[sk.Size] = true
		}
	}
	return out
}
