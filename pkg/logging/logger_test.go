package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"invalid", InfoLevel}, // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLookupLevel_RejectsUnknown(t *testing.T) {
	if _, err := LookupLevel("verbose"); err == nil {
		t.Error("Expected error for unknown level")
	}
	if level, err := LookupLevel("warn"); err != nil || level != WarnLevel {
		t.Errorf("LookupLevel(warn) = %v, %v", level, err)
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"String", String("key", "value"), "key", "value"},
		{"Int", Int("count", 42), "count", 42},
		{"Float64", Float64("ratio", 3.14), "ratio", 3.14},
		{"Bool", Bool("enabled", true), "enabled", true},
		{"Duration", Duration("timeout", 5*time.Second), "timeout", "5s"},
		{"Error", Error(errors.New("test error")), "error", "test error"},
		{"Error nil", Error(nil), "error", nil},
		{"Component", Component("engine"), "component", "engine"},
		{"Country", Country("DEU"), "country", "DEU"},
		{"AnalysisID", AnalysisID("abc"), "analysis_id", "abc"},
		{"Stage", Stage("betweenness"), "stage", "betweenness"},
		{"Source", Source("postgres"), "source", "postgres"},
		{"Latency", Latency(time.Millisecond), "latency", "1ms"},
		{"Count", Count(7), "count", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("got %+v, want {Key:%s Value:%v}", tt.field, tt.key, tt.value)
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Invalid JSON line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestJSONLogger_WritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("analysis complete", Country("USA"), Count(3))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "analysis complete" {
		t.Errorf("Unexpected entry %+v", e)
	}
	if e.Fields["country"] != "USA" || e.Fields["count"] != float64(3) {
		t.Errorf("Unexpected fields %v", e.Fields)
	}
	if _, err := time.Parse(time.RFC3339Nano, e.Time); err != nil {
		t.Errorf("Invalid timestamp %q: %v", e.Time, err)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries at WARN, got %d", len(entries))
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Errorf("Expected DEBUG after SetLevel, got %v", logger.GetLevel())
	}
}

func TestJSONLogger_WithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("engine"), AnalysisID("a1"))

	child.Info("stage done", Stage("degree"))
	parent.Info("parent line")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "engine" || entries[0].Fields["analysis_id"] != "a1" {
		t.Errorf("Child fields missing: %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("Parent should not inherit child fields, got %v", entries[1].Fields)
	}
}

func TestJSONLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	child := logger.With(Component("worker"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); logger.Info("parent") }()
		go func() { defer wg.Done(); child.Info("child") }()
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 100 {
		t.Errorf("Expected 100 entries, got %d", got)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	timer := StartTimer(logger, "betweenness", Stage("betweenness"))
	elapsed := timer.End(Count(4))
	if elapsed < 0 {
		t.Errorf("Negative duration %v", elapsed)
	}

	StartTimer(logger, "eigenvector").EndWarn(errors.New("did not converge"))
	StartTimer(logger, "load").EndError(errors.New("unreachable"))

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[0].Fields["latency"] == nil || entries[0].Fields["count"] != float64(4) {
		t.Errorf("Unexpected End entry %+v", entries[0])
	}
	if entries[1].Level != "WARN" || entries[1].Fields["error"] != "did not converge" {
		t.Errorf("Unexpected EndWarn entry %+v", entries[1])
	}
	if entries[2].Level != "ERROR" || entries[2].Fields["error"] != "unreachable" {
		t.Errorf("Unexpected EndError entry %+v", entries[2])
	}
}

func TestNopLogger(t *testing.T) {
	logger := Nop()
	logger.Info("ignored", Count(1))
	if logger.With(Component("x")) == nil {
		t.Error("With should return a logger")
	}
	if logger.GetLevel() != InfoLevel {
		t.Errorf("Expected INFO, got %v", logger.GetLevel())
	}
}

func TestDefaultLogger_Replaceable(t *testing.T) {
	original := DefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(original) })

	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	Info("via default", Country("FRA"))
	Warn("warned")
	ErrorLog("failed")

	if got := len(decodeLines(t, &buf)); got != 3 {
		t.Errorf("Expected 3 entries through the default logger, got %d", got)
	}
}
