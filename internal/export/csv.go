package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Writer streams a rowset as CSV: one header row, one record per data row,
// no index column.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteRowset writes the header and every row of rs.
func (w *Writer) WriteRowset(rs *warehouse.Rowset) error {
	if err := w.csv.Write(rs.Columns); err != nil {
		return fmt.Errorf("Writer.WriteRowset: writing header: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for i, row := range rs.Rows {
		for j, cell := range row {
			record[j] = FormatCell(cell)
		}
		if err := w.csv.Write(record); err != nil {
			return fmt.Errorf("Writer.WriteRowset: writing row %d: %w", i, err)
		}
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("Writer.WriteRowset: flushing: %w", err)
	}
	return nil
}

// FormatCell renders one warehouse value as a CSV field. Missing values
// become empty fields; floats keep their shortest exact form; timestamps
// with no clock component render as plain dates.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}
