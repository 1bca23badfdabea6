package warehouse

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/finops-dwh/o2c/internal/progress"
)

// stubConn records BulkInsert calls; the other Conn methods are unused here.
type stubConn struct {
	chunks  [][]string
	tables  []string
	columns []string
	failOn  int // 1-based call number to fail on, 0 for never
}

func (s *stubConn) Query(ctx context.Context, query string) (*Rowset, error) { return nil, nil }
func (s *stubConn) Exec(ctx context.Context, query string) error             { return nil }
func (s *stubConn) Close() error                                             { return nil }

func (s *stubConn) BulkInsert(ctx context.Context, table, column string, values []string) error {
	if s.failOn > 0 && len(s.chunks)+1 == s.failOn {
		return errors.New("insert rejected")
	}
	chunk := make([]string, len(values))
	copy(chunk, values)
	s.chunks = append(s.chunks, chunk)
	s.tables = append(s.tables, table)
	s.columns = append(s.columns, column)
	return nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("order-%03d", i)
	}
	return out
}

func TestChunkedInsertSplitsAndPreservesOrder(t *testing.T) {
	conn := &stubConn{}
	values := []string{"o-1", "o-2", "o-3", "o-4", "o-5", "o-6", "o-7", "o-8", "o-9", "o-10"}

	loader := &ChunkedInsert{ChunkSize: 4}
	if err := loader.Load(context.Background(), conn, "temp_order_ids", "gp_order_id", values); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(conn.chunks) != 3 {
		t.Fatalf("chunk count = %d, want 3", len(conn.chunks))
	}
	wantSizes := []int{4, 4, 2}
	for i, chunk := range conn.chunks {
		if len(chunk) != wantSizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, len(chunk), wantSizes[i])
		}
	}

	var flattened []string
	for _, chunk := range conn.chunks {
		flattened = append(flattened, chunk...)
	}
	if !reflect.DeepEqual(flattened, values) {
		t.Errorf("flattened chunks = %v, want input unchanged %v", flattened, values)
	}

	for i := range conn.tables {
		if conn.tables[i] != "temp_order_ids" || conn.columns[i] != "gp_order_id" {
			t.Errorf("chunk %d target = %s.%s, want temp_order_ids.gp_order_id", i, conn.tables[i], conn.columns[i])
		}
	}
}

func TestChunkedInsertExactMultiple(t *testing.T) {
	conn := &stubConn{}
	values := ids(8)

	loader := &ChunkedInsert{ChunkSize: 4}
	if err := loader.Load(context.Background(), conn, "t", "c", values); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(conn.chunks) != 2 {
		t.Errorf("chunk count = %d, want 2 for an exact multiple", len(conn.chunks))
	}
}

func TestChunkedInsertDefaultsChunkSize(t *testing.T) {
	conn := &stubConn{}
	values := ids(10)

	loader := &ChunkedInsert{} // zero value uses DefaultChunkSize
	if err := loader.Load(context.Background(), conn, "t", "c", values); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(conn.chunks) != 1 {
		t.Errorf("chunk count = %d, want 1 when input fits the default chunk", len(conn.chunks))
	}
}

func TestChunkedInsertReportsCumulativeProgress(t *testing.T) {
	conn := &stubConn{}
	var events []progress.Event
	rep := progress.ReporterFunc(func(e progress.Event) { events = append(events, e) })

	loader := &ChunkedInsert{ChunkSize: 3, Reporter: rep}
	if err := loader.Load(context.Background(), conn, "t", "c", ids(7)); err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("event count = %d, want 3", len(events))
	}
	wantDone := []int{3, 6, 7}
	for i, e := range events {
		if e.Stage != progress.StageUpload {
			t.Errorf("event %d stage = %s, want upload", i, e.Stage)
		}
		if e.Done != wantDone[i] || e.Total != 7 {
			t.Errorf("event %d progress = %d/%d, want %d/7", i, e.Done, e.Total, wantDone[i])
		}
	}
}

func TestChunkedInsertStopsAtFirstFailure(t *testing.T) {
	conn := &stubConn{failOn: 2}

	loader := &ChunkedInsert{ChunkSize: 3}
	err := loader.Load(context.Background(), conn, "t", "c", ids(9))
	if err == nil {
		t.Fatal("Load() expected error when an insert fails")
	}
	if !strings.Contains(err.Error(), "rows 4-6") {
		t.Errorf("error = %v, want it to name the failed row range 4-6", err)
	}
	if len(conn.chunks) != 1 {
		t.Errorf("chunks after failure = %d, want 1 (no chunks past the failure)", len(conn.chunks))
	}
}

func TestChunkedInsertEmptyInput(t *testing.T) {
	conn := &stubConn{}

	loader := &ChunkedInsert{ChunkSize: 3}
	if err := loader.Load(context.Background(), conn, "t", "c", nil); err != nil {
		t.Fatalf("Load() with no values returned error: %v", err)
	}
	if len(conn.chunks) != 0 {
		t.Errorf("chunk count = %d, want 0 for empty input", len(conn.chunks))
	}
}
