package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finops-dwh/o2c/internal/export"
	"github.com/finops-dwh/o2c/internal/extract"
	"github.com/finops-dwh/o2c/internal/logger"
	"github.com/finops-dwh/o2c/internal/period"
	"github.com/finops-dwh/o2c/internal/progress"
	"github.com/finops-dwh/o2c/internal/transform"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Options carries everything one run needs. All run state is explicit; the
// pipeline keeps nothing between runs.
type Options struct {
	// Period is the inclusive reporting window, already resolved.
	Period period.Period

	// Loader stages order ids into the warehouse. Nil selects a chunked
	// insert with the default chunk size.
	Loader warehouse.BulkLoader

	// OutputRoot and OutputDirs place the provider CSVs.
	OutputRoot string
	OutputDirs map[string]string

	// Reporter receives progress events. Nil discards them.
	Reporter progress.Reporter
}

// Result summarizes a completed run.
type Result struct {
	RunID      string
	Period     period.Period
	OrderRows  int
	ItemRows   int
	MergedRows int
	Files      []string
}

// Run executes one synchronous extraction against an established session:
// order-level query, order-id staging, item-level query, merge and pivot,
// then per-provider export. Any stage failing aborts the run with no retry;
// files already written stay in place.
func Run(ctx context.Context, conn warehouse.Conn, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	rep := opts.Reporter
	if rep == nil {
		rep = progress.Nop()
	}
	loader := opts.Loader
	if loader == nil {
		loader = &warehouse.ChunkedInsert{Reporter: rep}
	}

	log.Info().
		Str("start", opts.Period.Start).
		Str("end", opts.Period.End).
		Msg("Starting extraction run")

	// 1. Order-level rows for the period
	orders, err := extract.OrderLevel(ctx, conn, opts.Period, rep)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run: %w", err)
	}

	// 2. Item-level rows scoped to those orders
	items, err := extract.ItemLevel(ctx, conn, orders, loader, rep)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run: %w", err)
	}

	// 3. Pivot, merge, clear secondary transactions, align to the export schema
	rep.Report(progress.Event{Stage: progress.StageTransform, Message: "combining order and item data"})
	final, err := transform.Combine(orders, items)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run: %w", err)
	}
	rep.Report(progress.Event{
		Stage:   progress.StageTransform,
		Message: fmt.Sprintf("combined dataset has %d rows, %d columns", final.Len(), len(final.Columns)),
	})

	// 4. Partition into provider buckets and write CSVs
	exporter := &export.Exporter{Root: opts.OutputRoot, Dirs: opts.OutputDirs, Reporter: rep}
	files, err := exporter.Export(final, opts.Period.Label())
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run: %w", err)
	}

	result := &Result{
		RunID:      runID,
		Period:     opts.Period,
		OrderRows:  orders.Len(),
		ItemRows:   items.Len(),
		MergedRows: final.Len(),
		Files:      files,
	}
	log.Info().
		Int("order_rows", result.OrderRows).
		Int("item_rows", result.ItemRows).
		Int("files", len(result.Files)).
		Msg("Extraction run complete")
	return result, nil
}
