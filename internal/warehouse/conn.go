package warehouse

import "context"

// Conn is the session surface the extraction stages need from the warehouse.
// Query materializes full results with normalized column names; BulkInsert
// appends values to a single-column table in one batched statement.
type Conn interface {
	Query(ctx context.Context, query string) (*Rowset, error)
	Exec(ctx context.Context, query string) error
	BulkInsert(ctx context.Context, table, column string, values []string) error
	Close() error
}
