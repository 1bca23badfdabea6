package transform

import (
	"fmt"
	"sort"

	"github.com/finops-dwh/o2c/internal/warehouse"
)

const (
	orderIDColumn = "gp_order_id"
	txIndexColumn = "braintree_tx_index"

	// itemColumnCount is the number of columns a merge appends: three
	// metrics across four bands plus total_products.
	itemColumnCount = 13
)

// Combine merges pivoted item metrics onto the order-level rows and
// finalizes the export shape:
//
//  1. pivot the item rows into one wide entry per order
//  2. left-join those entries onto orders by gp_order_id
//  3. clear item-derived columns on secondary payment transactions
//  4. sort by (gp_order_id, braintree_tx_index), missing index last
//  5. align to the fixed export schema
//
// Orders without item rows keep missing markers, not zeros, in every
// item-derived column.
func Combine(orders, items *warehouse.Rowset) (*warehouse.Rowset, error) {
	pivot, err := PivotItems(items)
	if err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}

	merged, err := mergeItemMetrics(orders, pivot)
	if err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}
	if err := clearSecondaryTransactions(merged); err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}
	if err := sortByOrderTransaction(merged); err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}

	final, err := ExportSchema.Align(merged)
	if err != nil {
		return nil, fmt.Errorf("Combine: %w", err)
	}
	return final, nil
}

// itemDerivedColumns lists the columns a merge appends, grouped by metric in
// band order, with total_products last.
func itemDerivedColumns() []string {
	cols := make([]string, 0, itemColumnCount)
	for _, metric := range metricNames {
		for _, band := range BandCodes {
			cols = append(cols, metric+"_"+band)
		}
	}
	return append(cols, "total_products")
}

// mergeItemMetrics left-joins the pivot onto orders. Every order row is
// kept; a row whose order has no pivot entry gets nil in all appended
// columns. Total products is computed here, before any clearing, so it
// reflects the order's full item aggregate.
func mergeItemMetrics(orders *warehouse.Rowset, pivot map[string]*ItemMetrics) (*warehouse.Rowset, error) {
	idIdx, ok := orders.ColumnIndex(orderIDColumn)
	if !ok {
		return nil, &SchemaError{Missing: []string{orderIDColumn}}
	}

	merged := &warehouse.Rowset{
		Columns: append(append([]string{}, orders.Columns...), itemDerivedColumns()...),
		Rows:    make([][]any, 0, orders.Len()),
	}

	for i, row := range orders.Rows {
		orderID, err := cellString(row[idIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i, orderIDColumn, err)
		}

		out := make([]any, 0, len(merged.Columns))
		out = append(out, row...)

		if m := pivot[orderID]; m != nil {
			for _, q := range m.QuantityCount {
				out = append(out, q)
			}
			for _, p := range m.PriceIncVAT {
				out = append(out, p)
			}
			for _, p := range m.PriceExcVAT {
				out = append(out, p)
			}
			out = append(out, m.TotalProducts())
		} else {
			out = append(out, make([]any, itemColumnCount)...)
		}
		merged.Rows = append(merged.Rows, out)
	}
	return merged, nil
}

// clearSecondaryTransactions blanks every item-derived column on rows whose
// transaction index is present and 2 or higher. Item data stays attached to
// the first transaction only, so multi-transaction orders cannot double
// count items.
func clearSecondaryTransactions(merged *warehouse.Rowset) error {
	txIdx, ok := merged.ColumnIndex(txIndexColumn)
	if !ok {
		return &SchemaError{Missing: []string{txIndexColumn}}
	}
	itemIdx, err := columnIndexes(merged, itemDerivedColumns())
	if err != nil {
		return err
	}

	for i, row := range merged.Rows {
		tx, ok, err := cellFloat(row[txIdx])
		if err != nil {
			return fmt.Errorf("row %d %s: %w", i, txIndexColumn, err)
		}
		if !ok || tx < 2 {
			continue
		}
		for _, pos := range itemIdx {
			row[pos] = nil
		}
	}
	return nil
}

// sortByOrderTransaction orders rows by (order id, transaction index)
// ascending, rows with a missing index sorting after those with one. The
// sort is stable, so equal keys keep their input order.
func sortByOrderTransaction(merged *warehouse.Rowset) error {
	idIdx, ok := merged.ColumnIndex(orderIDColumn)
	if !ok {
		return &SchemaError{Missing: []string{orderIDColumn}}
	}
	txIdx, ok := merged.ColumnIndex(txIndexColumn)
	if !ok {
		return &SchemaError{Missing: []string{txIndexColumn}}
	}

	type sortKey struct {
		id    string
		tx    float64
		hasTx bool
	}
	type entry struct {
		row []any
		key sortKey
	}

	entries := make([]entry, len(merged.Rows))
	for i, row := range merged.Rows {
		id, err := cellString(row[idIdx])
		if err != nil {
			return fmt.Errorf("row %d %s: %w", i, orderIDColumn, err)
		}
		tx, hasTx, err := cellFloat(row[txIdx])
		if err != nil {
			return fmt.Errorf("row %d %s: %w", i, txIndexColumn, err)
		}
		entries[i] = entry{row: row, key: sortKey{id: id, tx: tx, hasTx: hasTx}}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		ka, kb := entries[a].key, entries[b].key
		if ka.id != kb.id {
			return ka.id < kb.id
		}
		if ka.hasTx != kb.hasTx {
			return ka.hasTx
		}
		return ka.tx < kb.tx
	})

	for i := range entries {
		merged.Rows[i] = entries[i].row
	}
	return nil
}
