package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogger_LogAndEvents(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	now := time.Now().Truncate(time.Millisecond)

	events := []Event{
		{Timestamp: now, Type: EventLaunch, Instance: "snapcraft-hello-amd64", Session: "s1", Details: "base=core18"},
		{Timestamp: now.Add(time.Second), Type: EventStart, Instance: "snapcraft-hello-amd64", Session: "s1"},
		{Timestamp: now.Add(2 * time.Second), Type: EventInject, Instance: "snapcraft-hello-amd64", Session: "s1", Details: "core snapcraft core18"},
		{Timestamp: now.Add(3 * time.Second), Type: EventDestroy, Instance: "snapcraft-hello-amd64", Session: "s1"},
	}

	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	result, err := logger.Events("snapcraft-hello-amd64")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	if len(result) != len(events) {
		t.Fatalf("got %d events, want %d", len(result), len(events))
	}

	for i, e := range result {
		if e.Type != events[i].Type {
			t.Errorf("event %d: type = %q, want %q", i, e.Type, events[i].Type)
		}
		if e.Instance != events[i].Instance || e.Session != events[i].Session {
			t.Errorf("event %d: instance/session = %q/%q", i, e.Instance, e.Session)
		}
		if e.Details != events[i].Details {
			t.Errorf("event %d: details = %q, want %q", i, e.Details, events[i].Details)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "snapcraft-hello-amd64.events.jsonl")); err != nil {
		t.Errorf("event file missing: %v", err)
	}
}

func TestLogger_EventsEmpty(t *testing.T) {
	logger := NewLogger(t.TempDir())

	result, err := logger.Events("nonexistent")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("got %d events, want 0", len(result))
	}

	last, err := logger.Last("nonexistent")
	if err != nil || last != nil {
		t.Errorf("Last() = %v, %v; want nil, nil", last, err)
	}
}

func TestLogger_LogEvent(t *testing.T) {
	logger := NewLogger(t.TempDir())

	if err := logger.LogEvent(EventRefresh, "my-instance", "session-1", "snapcraft refresh"); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	e, err := logger.Last("my-instance")
	if err != nil || e == nil {
		t.Fatalf("Last() = %v, %v", e, err)
	}
	if e.Type != EventRefresh {
		t.Errorf("type = %q, want %q", e.Type, EventRefresh)
	}
	if e.Session != "session-1" {
		t.Errorf("session = %q", e.Session)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp should be set automatically")
	}
}

func TestLogger_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state", "logs")
	logger := NewLogger(dir)

	if err := logger.LogEvent(EventStart, "x", "", ""); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("logs directory not created: %v", err)
	}
}

func TestLogger_PathStaysInLogsDir(t *testing.T) {
	root := t.TempDir()
	logsDir := filepath.Join(root, "logs")
	logger := NewLogger(logsDir)

	if err := logger.LogEvent(EventError, "../escape", "", ""); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.events.jsonl")); !os.IsNotExist(err) {
		t.Error("event log escaped the logs directory")
	}
}

func TestLogger_Remove(t *testing.T) {
	logger := NewLogger(t.TempDir())

	logger.LogEvent(EventLaunch, "removable", "", "")

	if err := logger.Remove("removable"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	events, err := logger.Events("removable")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after remove, want 0", len(events))
	}
}

func TestLogger_RemoveNonexistent(t *testing.T) {
	logger := NewLogger(t.TempDir())

	if err := logger.Remove("nonexistent"); err != nil {
		t.Errorf("Remove should not error for nonexistent: %v", err)
	}
}

func TestLogger_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)
	logger.LogEvent(EventStart, "box", "", "")

	f, err := os.OpenFile(filepath.Join(dir, "box.events.jsonl"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n")
	f.Close()
	logger.LogEvent(EventStop, "box", "", "")

	events, err := logger.Events("box")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 || events[1].Type != EventStop {
		t.Errorf("events = %+v", events)
	}
}
