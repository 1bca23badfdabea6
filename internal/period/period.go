package period

import (
	"fmt"
	"time"

	"github.com/finops-dwh/o2c/internal/config"
)

const dayFormat = "2006-01-02"

// Period is one inclusive reporting window. Start and End are "YYYY-MM-DD"
// strings, substituted verbatim into the extraction queries.
type Period struct {
	Start string
	End   string
}

// Label returns the "yy.mm" tag used in export filenames, derived from the
// start date.
func (p Period) Label() string {
	t, err := time.Parse(dayFormat, p.Start)
	if err != nil {
		return ""
	}
	return t.Format("06.01")
}

// Resolve picks the reporting period for a run. A YYYY-MM month override
// wins, then an explicitly configured start/end pair (used verbatim, with no
// date-logic checks), then the default-month heuristic against today.
func Resolve(cfg config.PeriodConfig, today time.Time) (Period, error) {
	if cfg.Month != "" {
		month, err := time.Parse("2006-01", cfg.Month)
		if err != nil {
			return Period{}, fmt.Errorf("period.Resolve: invalid month %q, want YYYY-MM: %w", cfg.Month, err)
		}
		return MonthSpan(month), nil
	}
	if cfg.Start != "" && cfg.End != "" {
		return Period{Start: cfg.Start, End: cfg.End}, nil
	}
	return MonthSpan(DefaultMonth(today)), nil
}

// DefaultMonth returns the first day of the month a run started today should
// report on. Finance closes the books nine days after month end, so the
// previous month stays the default through that window and the current month
// takes over afterwards.
func DefaultMonth(today time.Time) time.Time {
	// Compare whole days so the clock time of the run cannot shift the cutoff.
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	lastMonthEnd := firstOfMonth.AddDate(0, 0, -1)
	if !day.After(lastMonthEnd.AddDate(0, 0, 9)) {
		return time.Date(lastMonthEnd.Year(), lastMonthEnd.Month(), 1, 0, 0, 0, 0, today.Location())
	}
	return firstOfMonth
}

// MonthSpan expands the month containing t into an inclusive Period covering
// the full calendar month.
func MonthSpan(t time.Time) Period {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return Period{
		Start: first.Format(dayFormat),
		End:   last.Format(dayFormat),
	}
}
