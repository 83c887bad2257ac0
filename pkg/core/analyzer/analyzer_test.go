package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assortlab/skualloc/pkg/core/model"
)

func TestAnalyze_FullReport(t *testing.T) {
	skus := []model.SKU{
		{Style: "S1", Color: "BLK", Size: "M", OrdQty: 2},
		{Style: "S1", Color: "BLK", Size: "L", OrdQty: 1},
		{Style: "S1", Color: "WHT", Size: "M", OrdQty: 1},
	}
	stores := []model.Store{
		{ShopID: "s1", Tier: 1},
		{ShopID: "s2", Tier: 1},
	}

	a := model.NewAllocation()
	a.Add("s1", skus[0].Key(), 1)
	a.Add("s1", skus[2].Key(), 1)
	a.Add("s2", skus[0].Key(), 1)

	r := Analyze(a, skus, stores)

	assert.Equal(t, 4, r.TotalSupply)
	assert.Equal(t, 3, r.TotalAllocated)
	assert.InDelta(t, 0.75, r.AllocationRate, 1e-9)
	assert.Equal(t, 2, r.StoresServed)

	// s1 covers both colors and one of two sizes; s2 covers one of each.
	assert.InDelta(t, 0.75, r.AvgColorCoverage, 1e-9)
	assert.InDelta(t, 0.5, r.AvgSizeCoverage, 1e-9)

	require.Len(t, r.StoreDiversity, 2)
	assert.Equal(t, StoreDiversity{ShopID: "s1", Tier: 1, Colors: 2, Sizes: 1, SKUs: 2, Units: 2}, r.StoreDiversity[0])
	assert.Equal(t, StoreDiversity{ShopID: "s2", Tier: 1, Colors: 1, Sizes: 1, SKUs: 1, Units: 1}, r.StoreDiversity[1])

	require.Len(t, r.TierBalance, 1)
	tb := r.TierBalance[0]
	assert.Equal(t, 1, tb.Tier)
	assert.Equal(t, 2, tb.Stores)
	assert.Equal(t, 1, tb.MinUnits)
	assert.Equal(t, 2, tb.MaxUnits)
	assert.InDelta(t, 1.5, tb.MeanUnits, 1e-9)
	assert.InDelta(t, 0.5, tb.StdDev, 1e-9)
}

func TestAnalyze_ZeroSupplySKUExcludedFromDenominators(t *testing.T) {
	skus := []model.SKU{
		{Style: "S1", Color: "BLK", Size: "M", OrdQty: 2},
		{Style: "S1", Color: "RED", Size: "S", OrdQty: 0},
	}
	stores := []model.Store{{ShopID: "s1", Tier: 1}}

	a := model.NewAllocation()
	a.Add("s1", skus[0].Key(), 1)

	r := Analyze(a, skus, stores)

	// RED and S never count: s1 covers 1/1 colors and 1/1 sizes.
	assert.InDelta(t, 1.0, r.AvgColorCoverage, 1e-9)
	assert.InDelta(t, 1.0, r.AvgSizeCoverage, 1e-9)
	assert.Equal(t, 2, r.TotalSupply)
}

func TestAnalyze_EmptyAllocation(t *testing.T) {
	skus := []model.SKU{{Style: "S1", Color: "BLK", Size: "M", OrdQty: 3}}
	stores := []model.Store{
		{ShopID: "s1", Tier: 1},
		{ShopID: "s2", Tier: 2},
	}

	r := Analyze(model.NewAllocation(), skus, stores)

	assert.Equal(t, 0, r.TotalAllocated)
	assert.Zero(t, r.AllocationRate)
	assert.Equal(t, 0, r.StoresServed)
	assert.Zero(t, r.AvgColorCoverage)

	require.Len(t, r.TierBalance, 2)
	assert.Equal(t, 0, r.TierBalance[0].MaxUnits)
}
