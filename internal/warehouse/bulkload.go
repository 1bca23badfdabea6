package warehouse

import (
	"context"
	"fmt"

	"github.com/finops-dwh/o2c/internal/progress"
)

// DefaultChunkSize bounds one batched insert so no single statement exceeds
// warehouse payload limits.
const DefaultChunkSize = 25000

// BulkLoader uploads an identifier list into a warehouse-side staging table.
// Implementations own the batching strategy; swapping one in must not
// require pipeline changes.
type BulkLoader interface {
	Load(ctx context.Context, conn Conn, table, column string, values []string) error
}

// ChunkedInsert loads identifiers with fixed-size batched inserts, reporting
// cumulative progress after every chunk.
type ChunkedInsert struct {
	ChunkSize int
	Reporter  progress.Reporter
}

// Load splits values into chunks and issues one batched insert per chunk.
// Chunks are inserted in order; a failed chunk aborts the load.
func (c *ChunkedInsert) Load(ctx context.Context, conn Conn, table, column string, values []string) error {
	size := c.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	rep := c.Reporter
	if rep == nil {
		rep = progress.Nop()
	}

	total := len(values)
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		if err := conn.BulkInsert(ctx, table, column, values[start:end]); err != nil {
			return fmt.Errorf("ChunkedInsert.Load: inserting rows %d-%d: %w", start+1, end, err)
		}
		rep.Report(progress.Event{
			Stage:   progress.StageUpload,
			Message: fmt.Sprintf("uploaded %d/%d order ids", end, total),
			Done:    end,
			Total:   total,
		})
	}
	return nil
}
