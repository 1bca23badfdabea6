package transform

import (
	"fmt"
	"strings"

	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Schema is an explicit, ordered column contract for a rowset.
type Schema struct {
	Columns []string
}

// ExportSchema is the fixed column layout every provider file must match.
// Order is load-bearing: downstream reconciliation workbooks reference these
// columns by position.
var ExportSchema = Schema{Columns: []string{
	"gp_order_id",
	"gp_order_id_obfuscated",
	"mp_order_id",
	"payment_system",
	"braintree_tx_index",
	"braintree_tx_id",
	"location_name",
	"order_vendor",
	"vendor_group",
	"order_completed",
	"created_at_timestamp",
	"delivered_at_timestamp",
	"created_at_day",
	"created_at_week",
	"created_at_month",
	"delivered_at_day",
	"delivered_at_week",
	"delivered_at_month",
	"ops_date_day",
	"ops_date_week",
	"ops_date_month",
	"post_promo_sales_inc_vat",
	"delivery_fee_inc_vat",
	"priority_fee_inc_vat",
	"small_order_fee_inc_vat",
	"mp_bag_fee_inc_vat",
	"total_payment_inc_vat",
	"tips_amount",
	"total_payment_with_tips_inc_vat",
	"post_promo_sales_exc_vat",
	"delivery_fee_exc_vat",
	"priority_fee_exc_vat",
	"small_order_fee_exc_vat",
	"mp_bag_fee_exc_vat",
	"total_revenue_exc_vat",
	"cost_of_goods_inc_vat",
	"cost_of_goods_exc_vat",
	"alt_post_promo_sales_inc_vat",
	"alt_delivery_fee_exc_vat",
	"alt_priority_fee_exc_vat",
	"alt_small_order_fee_exc_vat",
	"alt_total_payment_with_tips_inc_vat",
	"total_products",
	"item_quantity_count_0",
	"item_quantity_count_5",
	"item_quantity_count_20",
	"total_price_exc_vat_0",
	"total_price_exc_vat_5",
	"total_price_exc_vat_20",
	"total_price_inc_vat_0",
	"total_price_inc_vat_5",
	"total_price_inc_vat_20",
}}

// SchemaError reports every expected column a rowset failed to provide.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns: %s", strings.Join(e.Missing, ", "))
}

// Align reorders rs to exactly the schema's columns. Every schema column
// must be present; the returned SchemaError names all that are not. Columns
// outside the schema are dropped.
func (s Schema) Align(rs *warehouse.Rowset) (*warehouse.Rowset, error) {
	idx, err := columnIndexes(rs, s.Columns)
	if err != nil {
		return nil, err
	}

	out := &warehouse.Rowset{
		Columns: append([]string{}, s.Columns...),
		Rows:    make([][]any, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		selected := make([]any, len(idx))
		for j, pos := range idx {
			selected[j] = row[pos]
		}
		out.Rows[i] = selected
	}
	return out, nil
}

// columnIndexes resolves names to positions in rs, collecting every missing
// name into one SchemaError.
func columnIndexes(rs *warehouse.Rowset, names []string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, name := range names {
		pos, ok := rs.ColumnIndex(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}
