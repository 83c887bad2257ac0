package model

// Allocation is the store x SKU integer allocation matrix. It is created
// empty and only ever grows; stages add units, nothing removes them.
type Allocation struct {
	cells map[cell]int

	storeTotals map[string]int
	skuTotals   map[string]int
}

type cell struct {
	shop string
	sku  string
}

// NewAllocation returns an empty allocation matrix.
func NewAllocation() *Allocation {
	return &Allocation{
		cells:       make(map[cell]int),
		storeTotals: make(map[string]int),
		skuTotals:   make(map[string]int),
	}
}

// Add grants qty units of the SKU to the store. qty must be positive.
func (a *Allocation) Add(shopID, skuKey string, qty int) {
	if qty <= 0 {
		return
	}
	a.cells[cell{shopID, skuKey}] += qty
	a.storeTotals[shopID] += qty
	a.skuTotals[skuKey] += qty
}

// Qty returns the allocated quantity for a (store, SKU) pair.
func (a *Allocation) Qty(shopID, skuKey string) int {
	return a.cells[cell{shopID, skuKey}]
}

// StoreTotal returns the total units allocated to a store.
func (a *Allocation) StoreTotal(shopID string) int {
	return a.storeTotals[shopID]
}

// SKUTotal returns the total units allocated of a SKU across all stores.
func (a *Allocation) SKUTotal(skuKey string) int {
	return a.skuTotals[skuKey]
}

// Total returns the total allocated units across the whole matrix.
func (a *Allocation) Total() int {
	sum := 0
	for _, q := range a.cells {
		sum += q
	}
	return sum
}

// Pairs returns the number of (store, SKU) pairs with a positive quantity.
func (a *Allocation) Pairs() int {
	return len(a.cells)
}

// Row is one positive matrix entry, used when handing the matrix to
// reporting collaborators in a deterministic order.
type Row struct {
	ShopID string
	SKUKey string
	Qty    int
}

// Rows flattens the matrix in (store, SKU) input order, skipping empty
// cells. Iterating the provided slices rather than the internal map keeps
// the output byte-identical across runs.
func (a *Allocation) Rows(stores []Store, skus []SKU) []Row {
	var rows []Row
	for _, st := range stores {
		for _, sk := range skus {
			if q := a.Qty(st.ShopID, sk.Key()); q > 0 {
				rows = append(rows, Row{ShopID: st.ShopID, SKUKey: sk.Key(), Qty: q})
			}
		}
	}
	return rows
}
