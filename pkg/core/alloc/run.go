// Package alloc is the allocation engine: it turns (SKU supply, store list,
// tier configuration) into a store x SKU integer allocation matrix, either
// through the three-stage pipeline or the unified integer program.
package alloc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assortlab/skualloc/pkg/core/analyzer"
	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/core/solver"
	"github.com/assortlab/skualloc/pkg/core/tiering"
)

// Method selects the algorithm variant.
type Method string

const (
	// MethodThreeStep runs the combination-selection MILP followed by the
	// greedy unit fitter and residual filler.
	MethodThreeStep Method = "three-step"

	// MethodIntegrated runs the single unified MILP.
	MethodIntegrated Method = "integrated"
)

// Solver status strings reported in run metadata.
const (
	StatusOptimal             = "optimal"
	StatusTimeLimitSuboptimal = "time_limit_suboptimal"
)

// Params is the full scenario configuration for one run. It replaces any
// notion of process-wide state: two runs with equal Params, tables and tier
// specs produce byte-identical matrices.
type Params struct {
	Scenario    string
	Method      Method
	Temperature float64
	Seed        int64
	Weights     Weights
	TimeLimit   time.Duration
}

// StageStats records what each pipeline stage contributed.
type StageStats struct {
	Stage1Pairs int
	Stage2Units int
	Stage3Units int
}

// Result is the output artifact of a run: the matrix plus metadata.
type Result struct {
	RunID    string
	Style    string
	Scenario string
	Method   Method

	// Status is "optimal" or "time_limit_suboptimal". Infeasibility is an
	// error, not a result.
	Status string

	Allocation *model.Allocation

	// SKUs and Stores are the classified per-run copies (scarcity labels,
	// tiers, priority scores) the matrix was built against.
	SKUs   []model.SKU
	Stores []model.Store

	Report analyzer.Report
	Stages StageStats
}

// Engine owns the solver backend and tier configuration shared by runs.
// Each run gets its own copies of supply counters, tier assignments and
// priority ranking; nothing mutable crosses run boundaries.
type Engine struct {
	solver solver.Solver
	tiers  []model.TierSpec
	logger *zap.Logger
}

// NewEngine builds an engine. logger may be zap.NewNop() in tests.
func NewEngine(s solver.Solver, tiers []model.TierSpec, logger *zap.Logger) *Engine {
	return &Engine{solver: s, tiers: tiers, logger: logger}
}

// Run executes one (style, scenario) allocation. Classification happens
// once, then the chosen variant fills the matrix; the analyzer report is
// computed on the final matrix.
func (e *Engine) Run(ctx context.Context, tables model.Tables, p Params) (*Result, error) {
	if len(tables.SKUs) == 0 {
		return nil, model.NewValidationError("SKU table is empty")
	}
	if len(tables.Stores) == 0 {
		return nil, model.NewValidationError("store table is empty")
	}

	stores, err := tiering.Classify(tables.Stores, e.tiers)
	if err != nil {
		return nil, err
	}
	stores = RankStores(stores, p.Temperature, p.Seed)
	skus := ClassifyScarcity(tables.SKUs, len(stores))

	e.logger.Info("Run started",
		zap.String("style", tables.Style),
		zap.String("scenario", p.Scenario),
		zap.String("method", string(p.Method)),
		zap.Int("skus", len(skus)),
		zap.Int("stores", len(stores)),
	)

	opts := solver.Options{TimeLimit: p.TimeLimit, Seed: p.Seed}

	result := &Result{
		RunID:    uuid.NewString(),
		Style:    tables.Style,
		Scenario: p.Scenario,
		Method:   p.Method,
		Status:   StatusOptimal,
		SKUs:     skus,
		Stores:   stores,
	}

	switch p.Method {
	case MethodIntegrated:
		integrated, err := AllocateIntegrated(ctx, e.solver, skus, stores, p.Weights, opts)
		if err != nil {
			return nil, e.annotate(err, tables.Style, p.Scenario)
		}
		result.Allocation = integrated.Allocation
		if integrated.Suboptimal {
			result.Status = StatusTimeLimitSuboptimal
		}

	case MethodThreeStep, "":
		sel, err := SelectCombinations(ctx, e.solver, skus, stores, p.Weights.Coverage, opts)
		if err != nil {
			return nil, e.annotate(err, tables.Style, p.Scenario)
		}
		if sel.Suboptimal {
			result.Status = StatusTimeLimitSuboptimal
		}

		remaining := make([]int, len(skus))
		for i, sk := range skus {
			remaining[i] = sk.OrdQty
		}

		a := model.NewAllocation()
		stage2 := FitUnits(a, skus, stores, sel, remaining)
		stage3 := FillResidual(a, skus, stores, remaining)
		result.Allocation = a
		result.Stages = StageStats{
			Stage1Pairs: countPicked(sel),
			Stage2Units: stage2,
			Stage3Units: stage3,
		}

	default:
		return nil, model.NewConfigError("unknown method %q", p.Method)
	}

	result.Report = analyzer.Analyze(result.Allocation, skus, stores)

	e.logger.Info("Run finished",
		zap.String("run_id", result.RunID),
		zap.String("status", result.Status),
		zap.Int("total_allocated", result.Report.TotalAllocated),
		zap.Int("total_supply", result.Report.TotalSupply),
		zap.Int("stores_served", result.Report.StoresServed),
	)

	return result, nil
}

// annotate fills style/scenario into infeasibility errors so the batch
// boundary can report which pair failed.
func (e *Engine) annotate(err error, style, scenario string) error {
	var inf *model.InfeasibleError
	if errors.As(err, &inf) {
		inf.Style = style
		inf.Scenario = scenario
		return inf
	}
	return err
}

func countPicked(sel *Selection) int {
	n := 0
	for _, row := range sel.Picked {
		for _, picked := range row {
			if picked {
				n++
			}
		}
	}
	return n
}
