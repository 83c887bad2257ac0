package alloc

import (
	"context"
	"math"

	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/core/solver"
)

// Selection is the outcome of the combination-selection MILP: for every
// (SKU, store) pair, whether the SKU is assigned to the store.
type Selection struct {
	// Picked is indexed [skuIdx][storeIdx], matching the input slices.
	Picked [][]bool

	// Suboptimal is set when the solver hit its time limit and the best
	// incumbent was accepted.
	Suboptimal bool

	// Objective is the solver's (scaled) objective value.
	Objective float64
}

// SelectCombinations decides which (store, SKU) pairs to activate,
// maximizing normalized color plus size coverage across stores. Each
// activation consumes at least one unit later, so per-SKU activations are
// capped by supply, and per-store activations by the store's tier capacity
// expressed as a count.
func SelectCombinations(ctx context.Context, s solver.Solver, skus []model.SKU, stores []model.Store, coverageWeight float64, opts solver.Options) (*Selection, error) {
	m := solver.NewModel()

	x := make([][]solver.Var, len(skus))
	for i := range skus {
		x[i] = make([]solver.Var, len(stores))
		for j := range stores {
			x[i][j] = m.NewBoolVar()
		}
	}

	// Supply ceilings: each assignment consumes at least one unit.
	for i, sk := range skus {
		expr := solver.NewLinearExpr()
		for j := range stores {
			expr.Add(x[i][j])
		}
		m.AddLessOrEqual(expr, int64(sk.OrdQty))
	}

	// Per-store assignment caps (count of distinct SKUs, not quantity).
	for j, st := range stores {
		expr := solver.NewLinearExpr()
		for i := range skus {
			expr.Add(x[i][j])
		}
		m.AddLessOrEqual(expr, int64(st.MaxPerSKU))
	}

	colorGroups, sizeGroups := attributeGroups(skus)
	colorWeight := scaledWeight(coverageWeight, len(colorGroups))
	sizeWeight := scaledWeight(coverageWeight, len(sizeGroups))

	objective := solver.NewLinearExpr()
	for j := range stores {
		for _, group := range colorGroups {
			bin := coverageBinary(m, x, group, j)
			objective.AddTerm(bin, colorWeight)
		}
		for _, group := range sizeGroups {
			bin := coverageBinary(m, x, group, j)
			objective.AddTerm(bin, sizeWeight)
		}
	}
	m.Maximize(objective)

	result, err := s.Solve(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	switch result.Status {
	case solver.StatusInfeasible, solver.StatusUnknown:
		return nil, &model.InfeasibleError{Stage: "combination-selection"}
	}

	sel := &Selection{
		Picked:     make([][]bool, len(skus)),
		Suboptimal: result.Status == solver.StatusFeasible,
		Objective:  result.Objective,
	}
	for i := range skus {
		sel.Picked[i] = make([]bool, len(stores))
		for j := range stores {
			sel.Picked[i][j] = result.Value(x[i][j]) > 0
		}
	}
	return sel, nil
}

// attributeGroup holds the SKU indices sharing one color or size value.
type attributeGroup struct {
	value   string
	skuIdxs []int
}

// attributeGroups buckets SKU indices by color and by size, in first-seen
// order so model construction stays deterministic.
func attributeGroups(skus []model.SKU) (colors, sizes []attributeGroup) {
	colorIdx := make(map[string]int)
	sizeIdx := make(map[string]int)
	for i, sk := range skus {
		if sk.OrdQty <= 0 {
			// Zero-supply SKUs cannot contribute coverage.
			continue
		}
		if gi, ok := colorIdx[sk.Color]; ok {
			colors[gi].skuIdxs = append(colors[gi].skuIdxs, i)
		} else {
			colorIdx[sk.Color] = len(colors)
			colors = append(colors, attributeGroup{value: sk.Color, skuIdxs: []int{i}})
		}
		if gi, ok := sizeIdx[sk.Size]; ok {
			sizes[gi].skuIdxs = append(sizes[gi].skuIdxs, i)
		} else {
			sizeIdx[sk.Size] = len(sizes)
			sizes = append(sizes, attributeGroup{value: sk.Size, skuIdxs: []int{i}})
		}
	}
	return colors, sizes
}

// coverageBinary links a 0/1 variable to "store j holds at least one SKU of
// this group": sum >= bin forces bin to 0 when nothing is assigned, and
// sum <= |group|*bin forces bin to 1 when anything is.
func coverageBinary(m *solver.Model, x [][]solver.Var, group attributeGroup, j int) solver.Var {
	bin := m.NewBoolVar()

	lower := solver.NewLinearExpr()
	for _, i := range group.skuIdxs {
		lower.Add(x[i][j])
	}
	lower.AddTerm(bin, -1)
	m.AddGreaterOrEqual(lower, 0)

	upper := solver.NewLinearExpr()
	for _, i := range group.skuIdxs {
		upper.Add(x[i][j])
	}
	upper.AddTerm(bin, -int64(len(group.skuIdxs)))
	m.AddLessOrEqual(upper, 0)

	return bin
}

// scaledWeight normalizes a coverage weight by the attribute cardinality and
// scales it to an integer coefficient.
func scaledWeight(weight float64, cardinality int) int64 {
	if cardinality == 0 {
		return 0
	}
	return int64(math.Round(objScale * weight / float64(cardinality)))
}
