package progress

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Stage identifies which part of a run an event belongs to.
type Stage string

const (
	StageConnect   Stage = "connect"
	StageOrders    Stage = "orders"
	StageUpload    Stage = "upload"
	StageItems     Stage = "items"
	StageTransform Stage = "transform"
	StageExport    Stage = "export"
)

// Event is one progress update. Done and Total are set only for counted work
// such as the chunked id upload; both are zero otherwise.
type Event struct {
	Stage   Stage
	Message string
	Done    int
	Total   int
}

// Reporter consumes progress events. The pipeline emits events from a single
// goroutine, so implementations are never called concurrently.
type Reporter interface {
	Report(e Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(e Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Nop returns a reporter that discards all events.
func Nop() Reporter {
	return ReporterFunc(func(Event) {})
}

// Console renders events as human-readable lines.
type Console struct {
	Out io.Writer
}

func (c *Console) Report(e Event) {
	if e.Total > 0 {
		fmt.Fprintf(c.Out, "[%s] %s (%d/%d)\n", e.Stage, e.Message, e.Done, e.Total)
		return
	}
	fmt.Fprintf(c.Out, "[%s] %s\n", e.Stage, e.Message)
}

// Log forwards events to a zerolog logger as structured records.
type Log struct {
	Logger zerolog.Logger
}

func (l *Log) Report(e Event) {
	ev := l.Logger.Info().Str("stage", string(e.Stage))
	if e.Total > 0 {
		ev = ev.Int("done", e.Done).Int("total", e.Total)
	}
	ev.Msg(e.Message)
}

// Multi fans each event out to every reporter in order.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(e Event) {
		for _, r := range reporters {
			r.Report(e)
		}
	})
}
