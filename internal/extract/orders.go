package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/finops-dwh/o2c/internal/period"
	"github.com/finops-dwh/o2c/internal/progress"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// OrderLevel pulls one row per (order, payment transaction) for the period.
// The query is executed once; failures are returned without retry.
func OrderLevel(ctx context.Context, conn warehouse.Conn, p period.Period, rep progress.Reporter) (*warehouse.Rowset, error) {
	rep.Report(progress.Event{
		Stage:   progress.StageOrders,
		Message: fmt.Sprintf("executing order-level query for %s to %s", p.Start, p.End),
	})

	started := time.Now()
	rs, err := conn.Query(ctx, OrderLevelQuery(p))
	if err != nil {
		return nil, fmt.Errorf("OrderLevel: %w", err)
	}

	rep.Report(progress.Event{
		Stage:   progress.StageOrders,
		Message: fmt.Sprintf("order-level query returned %d rows in %.1fs", rs.Len(), time.Since(started).Seconds()),
	})
	return rs, nil
}
