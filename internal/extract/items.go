package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finops-dwh/o2c/internal/progress"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// ErrNoOrderIDs means the order-level result carried no usable order
// identifiers, so the item-level query has nothing to scope to.
var ErrNoOrderIDs = errors.New("extract: no order ids in order-level result")

const (
	// orderIDColumn is the join key shared by both query results.
	orderIDColumn = "gp_order_id"

	// orderIDTable is the session-scoped staging table for the item query.
	// CREATE OR REPLACE keeps reruns on one connection from colliding.
	orderIDTable          = "temp_order_ids"
	createOrderIDTableSQL = "CREATE OR REPLACE TEMP TABLE temp_order_ids (gp_order_id STRING)"
	orderIDSubquery       = "SELECT gp_order_id FROM temp_order_ids"
)

// ItemLevel stages the distinct order ids from orders into the warehouse and
// pulls one pre-aggregated row per (order, VAT band) for exactly those
// orders.
func ItemLevel(ctx context.Context, conn warehouse.Conn, orders *warehouse.Rowset, loader warehouse.BulkLoader, rep progress.Reporter) (*warehouse.Rowset, error) {
	ids, err := DistinctOrderIDs(orders)
	if err != nil {
		return nil, fmt.Errorf("ItemLevel: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ItemLevel: %w", ErrNoOrderIDs)
	}

	rep.Report(progress.Event{
		Stage:   progress.StageUpload,
		Message: fmt.Sprintf("staging %d order ids", len(ids)),
	})

	if err := conn.Exec(ctx, createOrderIDTableSQL); err != nil {
		return nil, fmt.Errorf("ItemLevel: creating staging table: %w", err)
	}
	if err := loader.Load(ctx, conn, orderIDTable, orderIDColumn, ids); err != nil {
		return nil, fmt.Errorf("ItemLevel: %w", err)
	}

	rep.Report(progress.Event{Stage: progress.StageItems, Message: "executing item-level query"})
	started := time.Now()
	rs, err := conn.Query(ctx, ItemLevelQuery())
	if err != nil {
		return nil, fmt.Errorf("ItemLevel: %w", err)
	}

	rep.Report(progress.Event{
		Stage:   progress.StageItems,
		Message: fmt.Sprintf("item-level query returned %d rows in %.1fs", rs.Len(), time.Since(started).Seconds()),
	})
	return rs, nil
}

// DistinctOrderIDs extracts the unique, non-missing order identifiers from
// the order-level result in first-seen order. Repeated ids (one order with
// several payment transactions) collapse to one entry.
func DistinctOrderIDs(orders *warehouse.Rowset) ([]string, error) {
	idx, ok := orders.ColumnIndex(orderIDColumn)
	if !ok {
		return nil, fmt.Errorf("column %q missing from order-level result", orderIDColumn)
	}

	seen := make(map[string]struct{}, orders.Len())
	ids := make([]string, 0, orders.Len())
	for _, row := range orders.Rows {
		v := row[idx]
		if v == nil {
			continue
		}
		id, ok := v.(string)
		if !ok {
			id = fmt.Sprint(v)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
