package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finops-dwh/o2c/internal/warehouse"
)

// metricNames are the item metric column prefixes, in the order the derived
// wide columns are appended after a merge.
var metricNames = [3]string{"item_quantity_count", "total_price_inc_vat", "total_price_exc_vat"}

// itemColumns are the columns the item-level result must provide.
var itemColumns = []string{"gp_order_id", "vat_band", "item_quantity_count", "total_price_inc_vat", "total_price_exc_vat"}

// ItemMetrics is one order's wide pivot entry: each metric across the four
// VAT bands, indexed like BandCodes.
type ItemMetrics struct {
	QuantityCount [4]decimal.Decimal
	PriceIncVAT   [4]decimal.Decimal
	PriceExcVAT   [4]decimal.Decimal
}

// TotalProducts is the row-wise sum of the per-band quantities, including
// the other/unknown band.
func (m *ItemMetrics) TotalProducts() decimal.Decimal {
	total := decimal.Zero
	for _, q := range m.QuantityCount {
		total = total.Add(q)
	}
	return total
}

// PivotItems reshapes (order, band) item rows into one wide entry per order.
// Duplicate (order, band) pairs are summed and bands with no rows stay zero,
// so every entry carries all twelve metric values. Rows whose band label
// falls outside the four known codes contribute nothing. Input row order
// does not affect the result.
func PivotItems(items *warehouse.Rowset) (map[string]*ItemMetrics, error) {
	cols, err := columnIndexes(items, itemColumns)
	if err != nil {
		return nil, fmt.Errorf("PivotItems: %w", err)
	}

	pivot := make(map[string]*ItemMetrics)
	for i, row := range items.Rows {
		orderID, err := cellString(row[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("PivotItems: row %d gp_order_id: %w", i, err)
		}
		if orderID == "" {
			continue
		}

		label, err := cellString(row[cols[1]])
		if err != nil {
			return nil, fmt.Errorf("PivotItems: row %d vat_band: %w", i, err)
		}
		band := bandIndex(BandCode(label))
		if band < 0 {
			continue
		}

		quantity, err := cellDecimal(row[cols[2]])
		if err != nil {
			return nil, fmt.Errorf("PivotItems: row %d item_quantity_count: %w", i, err)
		}
		incVAT, err := cellDecimal(row[cols[3]])
		if err != nil {
			return nil, fmt.Errorf("PivotItems: row %d total_price_inc_vat: %w", i, err)
		}
		excVAT, err := cellDecimal(row[cols[4]])
		if err != nil {
			return nil, fmt.Errorf("PivotItems: row %d total_price_exc_vat: %w", i, err)
		}

		m := pivot[orderID]
		if m == nil {
			m = &ItemMetrics{}
			pivot[orderID] = m
		}
		m.QuantityCount[band] = m.QuantityCount[band].Add(quantity)
		m.PriceIncVAT[band] = m.PriceIncVAT[band].Add(incVAT)
		m.PriceExcVAT[band] = m.PriceExcVAT[band].Add(excVAT)
	}
	return pivot, nil
}
