// Package snapshot saves and restores named window arrangements. A snapshot
// records which zone each application's windows were parked in; loading one
// re-places whatever windows of those applications are open at the time.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Placement pins one application to a zone tile.
type Placement struct {
	App  string `json:"app"`
	Zone string `json:"zone"`
	Tile int    `json:"tile"`
}

// Snapshot is a named arrangement.
type Snapshot struct {
	Name       string      `json:"name"`
	SavedAt    time.Time   `json:"saved_at"`
	Placements []Placement `json:"placements"`
}

// Info summarizes a stored snapshot.
type Info struct {
	Name       string    `json:"name"`
	SavedAt    time.Time `json:"saved_at"`
	Placements int       `json:"placements"`
}

// Store reads and writes snapshots as JSON files in one directory.
type Store struct {
	dir string
}

// DefaultDir returns ~/.config/gridzones/snapshots.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gridzones", "snapshots"), nil
}

// NewStore opens a store rooted at dir; empty means DefaultDir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return &Store{dir: dir}, nil
}

// ValidateName rejects names that would escape the snapshot directory.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if strings.Contains(name, string(os.PathSeparator)) || name != filepath.Base(name) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	if name == "." || name == ".." || strings.Contains(name, "..") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save writes a snapshot, stamping SavedAt if unset.
func (s *Store) Save(snap Snapshot) error {
	path, err := s.path(snap.Name)
	if err != nil {
		return err
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", snap.Name, err)
	}
	return nil
}

// Load reads a snapshot by name.
func (s *Store) Load(name string) (Snapshot, error) {
	path, err := s.path(name)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot %q: %w", name, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot %q: %w", name, err)
	}
	if snap.Name == "" {
		snap.Name = name
	}
	return snap, nil
}

// Delete removes a snapshot by name.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", name, err)
	}
	return nil
}

// List returns a summary of every stored snapshot, sorted by name. Files
// that fail to parse are skipped.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		snap, err := s.Load(name)
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:       snap.Name,
			SavedAt:    snap.SavedAt,
			Placements: len(snap.Placements),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
