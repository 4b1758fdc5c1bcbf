// Package eventlog writes an optional append-only log of placement
// transitions with size-based rotation. It answers "why is this window
// here" after the fact; the daemon's structured log covers everything else.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Action labels one logged transition.
type Action string

const (
	ActionAssign Action = "ASSIGN"
	ActionCycle  Action = "CYCLE"
	ActionMove   Action = "MOVE"
	ActionRemove Action = "REMOVE"
	ActionReplay Action = "REPLAY"
	ActionRemap  Action = "REMAP"
	ActionRepair Action = "REPAIR"
)

// Config controls the action log destination and rotation.
type Config struct {
	Enabled   bool
	Path      string
	MaxSizeMB int
	MaxFiles  int
}

// Log is a rotating action log. A nil or disabled Log swallows records, so
// callers never guard.
type Log struct {
	mu       sync.Mutex
	file     *os.File
	cfg      Config
	size     int64
	maxBytes int64
}

// New opens the action log. A disabled config yields a no-op logger.
func New(cfg Config) (*Log, error) {
	if !cfg.Enabled {
		return &Log{cfg: cfg}, nil
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 3
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat action log: %w", err)
	}

	return &Log{
		file:     f,
		cfg:      cfg,
		size:     stat.Size(),
		maxBytes: int64(cfg.MaxSizeMB) * 1024 * 1024,
	}, nil
}

// Record appends one transition. Details are written in sorted key order so
// entries are diffable.
func (l *Log) Record(action Action, zone string, window uint32, details map[string]any) {
	if l == nil || !l.cfg.Enabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	if l.size >= l.maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "action log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")
	if zone != "" {
		sb.WriteString(" zone=")
		sb.WriteString(zone)
	}
	if window != 0 {
		fmt.Fprintf(&sb, " window=%d", window)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, v)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, v)
		}
	}
	sb.WriteString("\n")

	n, err := l.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "action log write failed: %v\n", err)
		return
	}
	l.size += int64(n)
}

// Close releases the log file.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log -> .1 -> .2 ... dropping the oldest past
// MaxFiles, then reopens a fresh file.
func (l *Log) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.cfg.Path
	for i := l.cfg.MaxFiles; i >= 1; i-- {
		old := fmt.Sprintf("%s.%d", base, i)
		if i == l.cfg.MaxFiles {
			os.Remove(old)
			continue
		}
		os.Rename(old, fmt.Sprintf("%s.%d", base, i+1))
	}
	if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate action log: %w", err)
	}

	f, err := os.OpenFile(base, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("reopen action log: %w", err)
	}
	l.file = f
	l.size = 0
	return nil
}
