package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"Warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("TEXT") != FormatText {
		t.Error("expected FormatText")
	}
	if ParseFormat("") != FormatJSON || ParseFormat("json") != FormatJSON {
		t.Error("expected FormatJSON default")
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value any
	}{
		{"NodeID", NodeID("book-1"), "node_id", "book-1"},
		{"Slot", Slot("focus"), "slot", "focus"},
		{"Endpoint", Endpoint("GET", "/graph"), "endpoint", "GET /graph"},
		{"RequestID", RequestID("abc"), "request_id", "abc"},
		{"Status", Status(503), "status", 503},
		{"Count", Count(7), "count", 7},
		{"Duration", Duration("ttl", 3*time.Second), "ttl", "3s"},
		{"Error", Error(errors.New("boom")), "error", "boom"},
		{"ErrorNil", Error(nil), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.Value != tt.value {
				t.Errorf("%s() = %+v, want {Key:%s Value:%v}", tt.name, tt.field, tt.key, tt.value)
			}
		})
	}
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)
	logger.now = fixedClock

	logger.Info("dataset synced", NodeID("b1"), Count(3))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "dataset synced" {
		t.Errorf("Message = %v, want 'dataset synced'", entry.Message)
	}
	if entry.Fields["node_id"] != "b1" {
		t.Errorf("Fields[node_id] = %v, want b1", entry.Fields["node_id"])
	}
	if entry.Time != "2024-03-01T12:00:00Z" {
		t.Errorf("Time = %v", entry.Time)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}

	for i, want := range []string{"WARN", "ERROR"} {
		var entry LogEntry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("Failed to unmarshal entry %d: %v", i, err)
		}
		if entry.Level != want {
			t.Errorf("Entry %d level = %v, want %v", i, entry.Level, want)
		}
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("sync"), String("node_id", "preset"))
	child.Info("re-encode", NodeID("override"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if entry.Fields["component"] != "sync" {
		t.Errorf("component field = %v, want sync", entry.Fields["component"])
	}
	if entry.Fields["node_id"] != "override" {
		t.Errorf("call-site field should win, got %v", entry.Fields["node_id"])
	}
}

func TestJSONLogger_SetLevelSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	child := logger.With(Component("camera"))

	logger.SetLevel(ErrorLevel)

	if child.GetLevel() != ErrorLevel {
		t.Errorf("child level = %v, want ErrorLevel", child.GetLevel())
	}

	child.Info("suppressed")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	child.Error("kept")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("message without fields")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, exists := entry["fields"]; exists {
		t.Error("Expected fields key to be omitted when empty")
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, DebugLevel, FormatText)
	logger.now = fixedClock

	logger.Warn("dangling link", String("target", "ghost node"), Count(1))

	want := "2024-03-01T12:00:00Z WARN  dangling link count=1 target=\"ghost node\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.log")

	logger, closer, err := NewFileLogger(path, InfoLevel, FormatJSON)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("unexpected file contents: %s", data)
	}
}

func TestNewFileLogger_BadPath(t *testing.T) {
	if _, _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), InfoLevel, FormatJSON); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	op := StartTimer(logger, "fetch graph", Operation("graph"))
	if elapsed := op.End(); elapsed < 0 {
		t.Errorf("negative elapsed %v", elapsed)
	}

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if entry.Level != "DEBUG" || entry.Fields["latency"] == nil {
		t.Errorf("unexpected entry %+v", entry)
	}

	buf.Reset()
	StartTimer(logger, "fetch graph").EndError(errors.New("unreachable"))
	if !strings.Contains(buf.String(), `"error":"unreachable"`) {
		t.Errorf("EndError output missing error: %s", buf.String())
	}
}

func BenchmarkJSONLogger_InfoFiltered(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("frame", NodeID("b1"), Int("degree", 4))
	}
}
