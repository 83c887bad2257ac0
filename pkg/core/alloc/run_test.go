package alloc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/core/solver"
)

// fakeSolver returns a canned status and a canned value prefix (remaining
// variables read as zero), recording the last model it was handed.
type fakeSolver struct {
	status    solver.Status
	prefix    []int64
	lastModel *solver.Model
}

func (f *fakeSolver) Solve(_ context.Context, m *solver.Model, _ solver.Options) (*solver.Result, error) {
	f.lastModel = m
	if f.status == solver.StatusInfeasible || f.status == solver.StatusUnknown {
		return &solver.Result{Status: f.status}, nil
	}
	values := make([]int64, m.NumVars())
	copy(values, f.prefix)
	return &solver.Result{Status: f.status, Values: values}, nil
}

// pickAll marks every (SKU, store) pair as selected for a model whose first
// numSKUs*numStores variables are the assignment binaries in row-major order.
func pickAll(numSKUs, numStores int) []int64 {
	prefix := make([]int64, numSKUs*numStores)
	for i := range prefix {
		prefix[i] = 1
	}
	return prefix
}

func singleTier(cap int) []model.TierSpec {
	return []model.TierSpec{{Name: "T1", Ratio: 1.0, MaxSKULimit: cap}}
}

func testTables() model.Tables {
	return model.Tables{
		Style: "STY001",
		SKUs: []model.SKU{
			{Style: "STY001", Color: "BLK", Size: "M", OrdQty: 4},
			{Style: "STY001", Color: "BLK", Size: "L", OrdQty: 1},
			{Style: "STY001", Color: "WHT", Size: "M", OrdQty: 3},
		},
		Stores: []model.Store{
			{ShopID: "s1", ShopName: "One", QtySum: 300},
			{ShopID: "s2", ShopName: "Two", QtySum: 200},
			{ShopID: "s3", ShopName: "Three", QtySum: 100},
		},
	}
}

func TestEngineRun_ThreeStepPipeline(t *testing.T) {
	fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(3, 3)}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), testTables(), Params{
		Scenario: "deterministic",
		Method:   MethodThreeStep,
		Weights:  Weights{Coverage: 1.0},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusOptimal, result.Status)
	assert.Equal(t, "STY001", result.Style)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 9, result.Stages.Stage1Pairs)

	// Everything allocated: supply 8 fits under 3 stores x cap 2 x 3 SKUs.
	assert.Equal(t, 8, result.Report.TotalAllocated)
	assert.Equal(t, 8, result.Report.TotalSupply)
	assert.InDelta(t, 1.0, result.Report.AllocationRate, 1e-9)

	// Per-SKU totals never exceed supply.
	for _, sk := range result.SKUs {
		assert.LessOrEqual(t, result.Allocation.SKUTotal(sk.Key()), sk.OrdQty)
	}

	// Per-cell quantities never exceed the tier cap.
	for _, st := range result.Stores {
		for _, sk := range result.SKUs {
			assert.LessOrEqual(t, result.Allocation.Qty(st.ShopID, sk.Key()), st.MaxPerSKU)
		}
	}
}

func TestEngineRun_DefaultMethodIsThreeStep(t *testing.T) {
	fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(3, 3)}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), testTables(), Params{Scenario: "deterministic"})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Report.TotalAllocated)
}

func TestEngineRun_Deterministic(t *testing.T) {
	params := Params{
		Scenario:    "temperature_50",
		Method:      MethodThreeStep,
		Temperature: 0.5,
		Seed:        42,
		Weights:     Weights{Coverage: 1.0},
	}

	run := func() []model.Row {
		fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(3, 3)}
		engine := NewEngine(fake, singleTier(2), zap.NewNop())
		result, err := engine.Run(context.Background(), testTables(), params)
		require.NoError(t, err)
		return result.Allocation.Rows(result.Stores, result.SKUs)
	}

	assert.Equal(t, run(), run(), "Same seed and params must produce an identical matrix")
}

func TestEngineRun_TimeLimitReportedAsSuboptimal(t *testing.T) {
	fake := &fakeSolver{status: solver.StatusFeasible, prefix: pickAll(3, 3)}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), testTables(), Params{Method: MethodThreeStep})
	require.NoError(t, err)
	assert.Equal(t, StatusTimeLimitSuboptimal, result.Status)
}

func TestEngineRun_InfeasibleAnnotatesStyleAndScenario(t *testing.T) {
	fake := &fakeSolver{status: solver.StatusInfeasible}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	_, err := engine.Run(context.Background(), testTables(), Params{
		Scenario: "deterministic",
		Method:   MethodThreeStep,
	})
	require.Error(t, err)

	var inf *model.InfeasibleError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, "STY001", inf.Style)
	assert.Equal(t, "deterministic", inf.Scenario)
	assert.Equal(t, "combination-selection", inf.Stage)
}

func TestEngineRun_UnknownMethod(t *testing.T) {
	engine := NewEngine(&fakeSolver{status: solver.StatusOptimal}, singleTier(2), zap.NewNop())

	_, err := engine.Run(context.Background(), testTables(), Params{Method: "simulated-annealing"})
	require.Error(t, err)

	var cfgErr *model.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestEngineRun_EmptyTablesRejected(t *testing.T) {
	engine := NewEngine(&fakeSolver{status: solver.StatusOptimal}, singleTier(2), zap.NewNop())

	var valErr *model.ValidationError

	_, err := engine.Run(context.Background(), model.Tables{Stores: testTables().Stores}, Params{})
	assert.ErrorAs(t, err, &valErr)

	_, err = engine.Run(context.Background(), model.Tables{SKUs: testTables().SKUs}, Params{})
	assert.ErrorAs(t, err, &valErr)
}

func TestEngineRun_ZeroSupplySKUGetsNothing(t *testing.T) {
	tables := testTables()
	tables.SKUs = append(tables.SKUs, model.SKU{Style: "STY001", Color: "RED", Size: "M", OrdQty: 0})

	fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(4, 3)}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), tables, Params{Method: MethodThreeStep})
	require.NoError(t, err)

	zeroKey := tables.SKUs[3].Key()
	assert.Equal(t, 0, result.Allocation.SKUTotal(zeroKey))
}

func TestEngineRun_MoreStoresThanSupply(t *testing.T) {
	tables := model.Tables{
		Style: "STY003",
		SKUs: []model.SKU{
			{Style: "STY003", Color: "BLK", Size: "M", OrdQty: 2},
		},
		Stores: []model.Store{
			{ShopID: "s1", QtySum: 500},
			{ShopID: "s2", QtySum: 400},
			{ShopID: "s3", QtySum: 300},
			{ShopID: "s4", QtySum: 200},
			{ShopID: "s5", QtySum: 100},
		},
	}

	fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(1, 5)}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), tables, Params{Method: MethodThreeStep})
	require.NoError(t, err, "Undersupply is not infeasibility")

	assert.Equal(t, 2, result.Report.TotalAllocated)
	assert.Equal(t, 2, result.Report.StoresServed, "Three stores must receive nothing")
	assert.Less(t, result.Report.AvgColorCoverage, 1.0)
}

func TestEngineRun_MoreSupplyNeverAllocatesLess(t *testing.T) {
	run := func(ordQty int) int {
		tables := testTables()
		tables.SKUs[0].OrdQty = ordQty

		fake := &fakeSolver{status: solver.StatusOptimal, prefix: pickAll(3, 3)}
		engine := NewEngine(fake, singleTier(2), zap.NewNop())
		result, err := engine.Run(context.Background(), tables, Params{Method: MethodThreeStep})
		require.NoError(t, err)
		return result.Allocation.SKUTotal(tables.SKUs[0].Key())
	}

	prev := run(0)
	for qty := 1; qty <= 8; qty++ {
		got := run(qty)
		assert.GreaterOrEqual(t, got, prev, "Allocated total must not drop when supply grows")
		prev = got
	}
}

func TestEngineRun_IntegratedDecodesQuantities(t *testing.T) {
	tables := model.Tables{
		Style: "STY002",
		SKUs: []model.SKU{
			{Style: "STY002", Color: "BLK", Size: "M", OrdQty: 5},
			{Style: "STY002", Color: "WHT", Size: "M", OrdQty: 5},
		},
		Stores: []model.Store{
			{ShopID: "s1", QtySum: 200},
			{ShopID: "s2", QtySum: 100},
		},
	}

	// q vars come first in row-major (SKU, store) order.
	fake := &fakeSolver{status: solver.StatusOptimal, prefix: []int64{2, 1, 0, 2}}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	result, err := engine.Run(context.Background(), tables, Params{
		Method:  MethodIntegrated,
		Weights: Weights{Coverage: 1.0, Volume: 0.1},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Allocation.Qty("s1", tables.SKUs[0].Key()))
	assert.Equal(t, 1, result.Allocation.Qty("s2", tables.SKUs[0].Key()))
	assert.Equal(t, 0, result.Allocation.Qty("s1", tables.SKUs[1].Key()))
	assert.Equal(t, 2, result.Allocation.Qty("s2", tables.SKUs[1].Key()))
	assert.Equal(t, 5, result.Report.TotalAllocated)
}

func TestEngineRun_IntegratedInfeasible(t *testing.T) {
	fake := &fakeSolver{status: solver.StatusInfeasible}
	engine := NewEngine(fake, singleTier(2), zap.NewNop())

	_, err := engine.Run(context.Background(), testTables(), Params{
		Scenario: "deterministic",
		Method:   MethodIntegrated,
	})
	require.Error(t, err)

	var inf *model.InfeasibleError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, "integrated", inf.Stage)
}
