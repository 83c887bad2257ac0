// Package loader reads and validates the two input tables the engine
// consumes: the SKU supply table and the store table. File formats stop
// here; the core only ever sees validated model types.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/assortlab/skualloc/pkg/core/model"
)

// SKURow is one row of the SKU supply table.
type SKURow struct {
	PartCD  string
	ColorCD string
	SizeCD  string
	OrdQty  int
}

// StoreRow is one row of the store table.
type StoreRow struct {
	ShopID   string
	ShopName string
	QtySum   float64
}

// LoadSKUTable reads the SKU supply CSV. Required columns: PART_CD,
// COLOR_CD, SIZE_CD, ORD_QTY.
func LoadSKUTable(path string) ([]SKURow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	cols, err := columnIndex(header, "PART_CD", "COLOR_CD", "SIZE_CD", "ORD_QTY")
	if err != nil {
		return nil, err
	}

	rows := make([]SKURow, 0, len(records))
	for n, rec := range records {
		qty, err := strconv.Atoi(strings.TrimSpace(rec[cols["ORD_QTY"]]))
		if err != nil {
			return nil, model.NewValidationError("row %d: ORD_QTY %q is not an integer", n+2, rec[cols["ORD_QTY"]])
		}
		if qty < 0 {
			return nil, model.NewValidationError("row %d: negative ORD_QTY %d", n+2, qty)
		}
		row := SKURow{
			PartCD:  strings.TrimSpace(rec[cols["PART_CD"]]),
			ColorCD: strings.TrimSpace(rec[cols["COLOR_CD"]]),
			SizeCD:  strings.TrimSpace(rec[cols["SIZE_CD"]]),
			OrdQty:  qty,
		}
		if row.PartCD == "" || row.ColorCD == "" || row.SizeCD == "" {
			return nil, model.NewValidationError("row %d: missing required SKU fields", n+2)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, model.NewValidationError("SKU table %s is empty", path)
	}
	return rows, nil
}

// LoadStoreTable reads the store CSV. Required columns: SHOP_ID, SHOP_NAME,
// QTY_SUM.
func LoadStoreTable(path string) ([]StoreRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	cols, err := columnIndex(header, "SHOP_ID", "SHOP_NAME", "QTY_SUM")
	if err != nil {
		return nil, err
	}

	rows := make([]StoreRow, 0, len(records))
	seen := make(map[string]bool)
	for n, rec := range records {
		qtySum, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["QTY_SUM"]]), 64)
		if err != nil {
			return nil, model.NewValidationError("row %d: QTY_SUM %q is not a number", n+2, rec[cols["QTY_SUM"]])
		}
		if qtySum < 0 {
			return nil, model.NewValidationError("row %d: negative QTY_SUM %v", n+2, qtySum)
		}
		row := StoreRow{
			ShopID:   strings.TrimSpace(rec[cols["SHOP_ID"]]),
			ShopName: strings.TrimSpace(rec[cols["SHOP_NAME"]]),
			QtySum:   qtySum,
		}
		if row.ShopID == "" {
			return nil, model.NewValidationError("row %d: missing SHOP_ID", n+2)
		}
		if seen[row.ShopID] {
			return nil, model.NewValidationError("duplicate SHOP_ID %s", row.ShopID)
		}
		seen[row.ShopID] = true
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, model.NewValidationError("store table %s is empty", path)
	}
	return rows, nil
}

// Styles returns the distinct styles present in the SKU table, in
// first-seen order.
func Styles(skuRows []SKURow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range skuRows {
		if !seen[r.PartCD] {
			seen[r.PartCD] = true
			out = append(out, r.PartCD)
		}
	}
	return out
}

// BuildTables filters the SKU rows to one style and assembles the validated
// run input. Duplicate (style, color, size) keys and unknown styles are
// rejected.
func BuildTables(skuRows []SKURow, storeRows []StoreRow, style string) (model.Tables, error) {
	tables := model.Tables{Style: style}

	seen := make(map[string]bool)
	for _, r := range skuRows {
		if r.PartCD != style {
			continue
		}
		sku := model.SKU{Style: r.PartCD, Color: r.ColorCD, Size: r.SizeCD, OrdQty: r.OrdQty}
		if seen[sku.Key()] {
			return model.Tables{}, model.NewValidationError("duplicate SKU key %s", sku.Key())
		}
		seen[sku.Key()] = true
		tables.SKUs = append(tables.SKUs, sku)
	}
	if len(tables.SKUs) == 0 {
		return model.Tables{}, model.NewValidationError("style %q not present in SKU table", style)
	}

	for _, r := range storeRows {
		tables.Stores = append(tables.Stores, model.Store{
			ShopID:   r.ShopID,
			ShopName: r.ShopName,
			QtySum:   r.QtySum,
		})
	}
	return tables, nil
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, nil, model.NewValidationError("%s has no header row", path)
	}
	return records[1:], records[0], nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, model.NewValidationError("missing required column %s", name)
		}
	}
	return cols, nil
}
