// Package runtimepath resolves where the daemon keeps its socket and pid
// file, so the CLI and the daemon agree on the location regardless of how
// the session set up XDG.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Dir resolves the per-user runtime directory. XDG_RUNTIME_DIR wins when
// set; otherwise the systemd-managed /run/user/<uid> is used when it
// exists, and a private directory under /tmp is created as a last resort.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := strconv.Itoa(os.Getuid())
	if dir := "/run/user/" + uid; dirExists(dir) {
		return dir, nil
	}

	fallback := "/tmp/gridzones-runtime-" + uid
	if err := os.MkdirAll(fallback, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return fallback, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// SocketPath returns the IPC socket path inside Dir.
func SocketPath() (string, error) {
	return runtimeFile("gridzones.sock")
}

// PIDPath returns the daemon pid file path inside Dir.
func PIDPath() (string, error) {
	return runtimeFile("gridzones.pid")
}

func runtimeFile(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
