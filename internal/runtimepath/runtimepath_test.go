package runtimepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestDirHonorsXDGRuntimeDir(t *testing.T) {
	want := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", want)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if got != want {
		t.Fatalf("Dir = %q, want %q", got, want)
	}
}

func TestDirFallbackWithoutXDG(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}

	uid := strconv.Itoa(os.Getuid())
	switch got {
	case "/run/user/" + uid:
	case "/tmp/gridzones-runtime-" + uid:
		if info, err := os.Stat(got); err != nil || !info.IsDir() {
			t.Fatalf("fallback dir %q not created: %v", got, err)
		}
	default:
		t.Fatalf("Dir = %q, want the /run/user or /tmp fallback", got)
	}
}

func TestPathsLiveInsideDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", base)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if socket != filepath.Join(base, "gridzones.sock") {
		t.Fatalf("SocketPath = %q", socket)
	}

	pid, err := PIDPath()
	if err != nil {
		t.Fatalf("PIDPath: %v", err)
	}
	if pid != filepath.Join(base, "gridzones.pid") {
		t.Fatalf("PIDPath = %q", pid)
	}
}
