package alloc

// objScale converts fractional objective weights into the integer
// coefficients the solver requires. Weights are multiplied by objScale and
// rounded when a model is built.
const objScale = 1000

// Weights are the scenario-configurable objective weights. The three-stage
// pipeline only uses Coverage (Stage 1); the integrated allocator uses all
// five terms.
type Weights struct {
	// Coverage scales the color/size diversity term.
	Coverage float64

	// Volume scales the total-allocated-quantity term.
	Volume float64

	// BalancePenalty scales the intra-tier max-min spread penalty.
	BalancePenalty float64

	// Efficiency scales the store-size-proportional allocation bonus.
	Efficiency float64

	// ScarcityBonus scales the bonus for placing scarce SKUs at
	// high-priority stores.
	ScarcityBonus float64
}
