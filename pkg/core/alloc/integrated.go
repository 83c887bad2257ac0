package alloc

import (
	"context"
	"math"

	"github.com/assortlab/skualloc/pkg/core/model"
	"github.com/assortlab/skualloc/pkg/core/solver"
)

// IntegratedResult is the outcome of the unified MILP.
type IntegratedResult struct {
	Allocation *model.Allocation
	Suboptimal bool
	Objective  float64
}

// AllocateIntegrated replaces Stages 1-3 with one integer program whose
// decision variables are the actual per-(store, SKU) quantities. The
// objective combines five weighted terms: coverage diversity, total
// allocated quantity, an intra-tier max-min spread penalty, a store-size
// efficiency bonus, and a scarce-SKU priority bonus.
//
// stores must already be tiered and ranked. This formulation dominates the
// three-stage pipeline in solution quality at the cost of solve time and
// memory.
func AllocateIntegrated(ctx context.Context, s solver.Solver, skus []model.SKU, stores []model.Store, w Weights, opts solver.Options) (*IntegratedResult, error) {
	m := solver.NewModel()

	// q[i][j]: units of SKU i at store j, bounded by the store's tier cap.
	q := make([][]solver.Var, len(skus))
	for i := range skus {
		q[i] = make([]solver.Var, len(stores))
		for j, st := range stores {
			q[i][j] = m.NewIntVar(0, int64(st.MaxPerSKU))
		}
	}

	// Supply ceiling per SKU.
	for i, sk := range skus {
		expr := solver.NewLinearExpr()
		for j := range stores {
			expr.Add(q[i][j])
		}
		m.AddLessOrEqual(expr, int64(sk.OrdQty))
	}

	// Per-store total allocation, as an explicit variable so the balance
	// and efficiency terms stay linear.
	storeTotal := make([]solver.Var, len(stores))
	for j, st := range stores {
		hi := int64(st.MaxPerSKU) * int64(len(skus))
		storeTotal[j] = m.NewIntVar(0, hi)
		expr := solver.NewLinearExpr()
		for i := range skus {
			expr.Add(q[i][j])
		}
		expr.AddTerm(storeTotal[j], -1)
		m.AddEquality(expr, 0)
	}

	objective := solver.NewLinearExpr()

	// Term 1: coverage diversity, normalized per attribute cardinality.
	colorGroups, sizeGroups := attributeGroups(skus)
	colorWeight := scaledWeight(w.Coverage, len(colorGroups))
	sizeWeight := scaledWeight(w.Coverage, len(sizeGroups))
	for j := range stores {
		for _, group := range colorGroups {
			objective.AddTerm(quantityCoverageBinary(m, q, group, j, stores[j].MaxPerSKU), colorWeight)
		}
		for _, group := range sizeGroups {
			objective.AddTerm(quantityCoverageBinary(m, q, group, j, stores[j].MaxPerSKU), sizeWeight)
		}
	}

	// Term 2: allocation volume.
	volumeCoef := int64(math.Round(objScale * w.Volume))
	for j := range stores {
		objective.AddTerm(storeTotal[j], volumeCoef)
	}

	// Term 3: intra-tier balance. Max-min spread per tier is penalized;
	// the spread is linearized with per-tier max/min variables bounding
	// every store total in the tier.
	balanceCoef := int64(math.Round(objScale * w.BalancePenalty))
	if balanceCoef > 0 {
		for _, tier := range tierGroups(stores) {
			hi := int64(0)
			for _, j := range tier {
				if h := int64(stores[j].MaxPerSKU) * int64(len(skus)); h > hi {
					hi = h
				}
			}
			maxVar := m.NewIntVar(0, hi)
			minVar := m.NewIntVar(0, hi)
			for _, j := range tier {
				le := solver.NewLinearExpr()
				le.Add(storeTotal[j]).AddTerm(maxVar, -1)
				m.AddLessOrEqual(le, 0)

				ge := solver.NewLinearExpr()
				ge.Add(storeTotal[j]).AddTerm(minVar, -1)
				m.AddGreaterOrEqual(ge, 0)
			}
			objective.AddTerm(maxVar, -balanceCoef)
			objective.AddTerm(minVar, balanceCoef)
		}
	}

	// Term 4: store-size efficiency. Each store's total is weighted by its
	// log-normalized QtySum, rewarding allocation proportionate to size.
	if w.Efficiency > 0 {
		maxQtySum := 0.0
		for _, st := range stores {
			if st.QtySum > maxQtySum {
				maxQtySum = st.QtySum
			}
		}
		for j, st := range stores {
			norm := 1.0
			if maxQtySum > 0 {
				norm = math.Log(st.QtySum+1) / math.Log(maxQtySum+1)
			}
			objective.AddTerm(storeTotal[j], int64(math.Round(objScale*w.Efficiency*norm)))
		}
	}

	// Term 5: scarcity bonus. Scarce units placed at high-priority stores
	// score extra, steering scarce SKUs to strategically chosen stores
	// rather than an even smear.
	if w.ScarcityBonus > 0 {
		for i, sk := range skus {
			if !sk.Scarce {
				continue
			}
			for j, st := range stores {
				objective.AddTerm(q[i][j], int64(math.Round(objScale*w.ScarcityBonus*st.Priority)))
			}
		}
	}

	m.Maximize(objective)

	result, err := s.Solve(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	switch result.Status {
	case solver.StatusInfeasible, solver.StatusUnknown:
		return nil, &model.InfeasibleError{Stage: "integrated"}
	}

	a := model.NewAllocation()
	for i, sk := range skus {
		for j, st := range stores {
			if qty := result.Value(q[i][j]); qty > 0 {
				a.Add(st.ShopID, sk.Key(), int(qty))
			}
		}
	}
	return &IntegratedResult{
		Allocation: a,
		Suboptimal: result.Status == solver.StatusFeasible,
		Objective:  result.Objective,
	}, nil
}

// quantityCoverageBinary links a 0/1 variable to "store j holds any unit of
// this group", with the big-M sized to the store's cap.
func quantityCoverageBinary(m *solver.Model, q [][]solver.Var, group attributeGroup, j, maxPerSKU int) solver.Var {
	bin := m.NewBoolVar()

	lower := solver.NewLinearExpr()
	for _, i := range group.skuIdxs {
		lower.Add(q[i][j])
	}
	lower.AddTerm(bin, -1)
	m.AddGreaterOrEqual(lower, 0)

	upper := solver.NewLinearExpr()
	for _, i := range group.skuIdxs {
		upper.Add(q[i][j])
	}
	upper.AddTerm(bin, -int64(maxPerSKU)*int64(len(group.skuIdxs)))
	m.AddLessOrEqual(upper, 0)

	return bin
}

// tierGroups buckets store indices by tier, in tier order.
func tierGroups(stores []model.Store) [][]int {
	byTier := make(map[int][]int)
	maxTier := 0
	for j, st := range stores {
		byTier[st.Tier] = append(byTier[st.Tier], j)
		if st.Tier > maxTier {
			maxTier = st.Tier
		}
	}
	var groups [][]int
	for t := 1; t <= maxTier; t++ {
		if g, ok := byTier[t]; ok {
			groups = append(groups, g)
		}
	}
	return groups
}
