package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New("debug")

	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("New('debug') level = %v, want %v", log.GetLevel(), zerolog.DebugLevel)
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("key", "value").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("Expected log output to contain key/value field, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"trace", "trace", zerolog.TraceLevel},
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"warning alias", "warning", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"mixed case", "DEBUG", zerolog.DebugLevel},
		{"surrounding whitespace", " info ", zerolog.InfoLevel},
		{"unknown falls back to info", "verbose", zerolog.InfoLevel},
		{"empty falls back to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)

	retrieved, ok := ctx.Value(LoggerKey).(zerolog.Logger)
	if !ok {
		t.Fatal("Expected logger to be stored in context")
	}

	retrieved.Info().Msg("context test")
	if !strings.Contains(buf.String(), "context test") {
		t.Errorf("Expected retrieved logger to write to the same buffer")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	ctx := WithContext(context.Background(), log)

	retrieved := FromContext(ctx)
	retrieved.Info().Msg("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("Expected FromContext to return the stored logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	// Context without a logger should return a usable default instead of panicking.
	log := FromContext(context.Background())
	log.Debug().Msg("default logger works")
}
