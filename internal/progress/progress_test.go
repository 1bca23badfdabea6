package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConsoleReport(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "plain message",
			event: Event{Stage: StageOrders, Message: "executing order-level query"},
			want:  "[orders] executing order-level query\n",
		},
		{
			name:  "counted message includes progress",
			event: Event{Stage: StageUpload, Message: "uploaded 50000/120000 order ids", Done: 50000, Total: 120000},
			want:  "[upload] uploaded 50000/120000 order ids (50000/120000)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := &Console{Out: &buf}

			c.Report(tt.event)

			if got := buf.String(); got != tt.want {
				t.Errorf("Console.Report output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogReport(t *testing.T) {
	var buf bytes.Buffer
	l := &Log{Logger: zerolog.New(&buf)}

	l.Report(Event{Stage: StageUpload, Message: "uploaded batch", Done: 25000, Total: 100000})

	output := buf.String()
	for _, want := range []string{`"stage":"upload"`, `"done":25000`, `"total":100000`, "uploaded batch"} {
		if !strings.Contains(output, want) {
			t.Errorf("Log.Report output missing %s: %s", want, output)
		}
	}
}

func TestLogReportOmitsZeroCounts(t *testing.T) {
	var buf bytes.Buffer
	l := &Log{Logger: zerolog.New(&buf)}

	l.Report(Event{Stage: StageExport, Message: "saved file"})

	output := buf.String()
	if strings.Contains(output, `"done"`) || strings.Contains(output, `"total"`) {
		t.Errorf("Log.Report should omit counts for uncounted events: %s", output)
	}
}

func TestMultiFansOutInOrder(t *testing.T) {
	var order []string
	first := ReporterFunc(func(e Event) { order = append(order, "first:"+e.Message) })
	second := ReporterFunc(func(e Event) { order = append(order, "second:"+e.Message) })

	Multi(first, second).Report(Event{Stage: StageExport, Message: "done"})

	if len(order) != 2 || order[0] != "first:done" || order[1] != "second:done" {
		t.Errorf("Multi fan-out order = %v, want [first:done second:done]", order)
	}
}

func TestNopDiscards(t *testing.T) {
	// Must not panic and must accept any event.
	Nop().Report(Event{Stage: StageConnect, Message: "connected"})
}
