package model

import "fmt"

// SKU is a single color/size variant of a style, the unit of allocation.
// OrdQty is the total supply available for the run; Scarce is derived by the
// scarcity classifier and never mutated afterwards.
type SKU struct {
	Style  string
	Color  string
	Size   string
	OrdQty int
	Scarce bool
}

// Key returns the canonical SKU identifier (style_color_size).
func (s SKU) Key() string {
	return fmt.Sprintf("%s_%s_%s", s.Style, s.Color, s.Size)
}

// Store is a retail store eligible for allocation. Tier, MaxPerSKU and
// Priority are derived per run by the tier classifier and priority ranking.
type Store struct {
	ShopID   string
	ShopName string

	// QtySum is the sales-volume proxy used for ranking.
	QtySum float64

	// Tier is the ordinal tier (1 = highest). Zero until classified.
	Tier int

	// MaxPerSKU is the per-SKU unit cap from the store's tier.
	MaxPerSKU int

	// Priority is the per-run priority score used for greedy tie-breaks.
	Priority float64
}

// TierSpec describes one tier bucket: the fraction of stores (by rank)
// assigned to it and the hard per-SKU unit ceiling for its stores.
type TierSpec struct {
	Name        string
	Ratio       float64
	MaxSKULimit int
}

// Tables holds the validated input for one (style, scenario) run.
type Tables struct {
	Style  string
	SKUs   []SKU
	Stores []Store
}

// Colors returns the distinct colors among SKUs with positive supply,
// in first-seen order. SKUs with zero supply are excluded so coverage
// denominators ignore variants that cannot be allocated.
func (t Tables) Colors() []string {
	return distinct(t.SKUs, func(s SKU) string { return s.Color })
}

// Sizes returns the distinct sizes among SKUs with positive supply,
// in first-seen order.
func (t Tables) Sizes() []string {
	return distinct(t.SKUs, func(s SKU) string { return s.Size })
}

func distinct(skus []SKU, key func(SKU) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range skus {
		if s.OrdQty <= 0 {
			continue
		}
		k := key(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
