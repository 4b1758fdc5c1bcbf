package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLogIsNoOp(t *testing.T) {
	l, err := New(Config{Enabled: false, Path: filepath.Join(t.TempDir(), "actions.log")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Record(ActionAssign, "left_1", 42, nil)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	var nilLog *Log
	nilLog.Record(ActionAssign, "left_1", 42, nil) // must not panic
}

func TestRecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: true, Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Record(ActionMove, "right_1", 42, map[string]any{
		"tile": 2,
		"app":  "firefox",
		"from": "left_1",
	})
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	// Details come out in sorted key order.
	want := `[MOVE] zone=right_1 window=42 app="firefox" from="left_1" tile=2`
	if !strings.HasSuffix(line, want) {
		t.Fatalf("line = %q, want suffix %q", line, want)
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	l, err := New(Config{Enabled: true, Path: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.maxBytes = 64 // force rotation quickly

	for i := 0; i < 10; i++ {
		l.Record(ActionAssign, "left_1", uint32(i+1), map[string]any{"app": "firefox"})
	}
	l.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("current log missing: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("rotated log missing: %v", err)
	}
	// MaxFiles=2 keeps at most .1 and .2.
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Fatalf("rotation kept more files than configured")
	}
}
