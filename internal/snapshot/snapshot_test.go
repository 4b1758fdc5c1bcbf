package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	snap := Snapshot{
		Name: "work",
		Placements: []Placement{
			{App: "firefox", Zone: "left", Tile: 0},
			{App: "kitty", Zone: "right", Tile: 1},
		},
	}
	if err := s.Save(snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("work")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "work" || len(got.Placements) != 2 {
		t.Fatalf("loaded = %+v", got)
	}
	if got.Placements[1] != (Placement{App: "kitty", Zone: "right", Tile: 1}) {
		t.Fatalf("placement = %+v", got.Placements[1])
	}
	if got.SavedAt.IsZero() {
		t.Fatal("SavedAt not stamped on save")
	}
}

func TestValidateNameRejectsEscapes(t *testing.T) {
	bad := []string{"", "  ", "a/b", "..", ".", "x..y", "../etc"}
	for _, name := range bad {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) accepted", name)
		}
	}
	if err := ValidateName("work-2024"); err != nil {
		t.Errorf("ValidateName(work-2024): %v", err)
	}
}

func TestListSortedWithCounts(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zeta", "alpha"} {
		snap := Snapshot{Name: name, Placements: []Placement{{App: "firefox", Zone: "left"}}}
		if err := s.Save(snap); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}
	// A stray non-snapshot file is ignored.
	if err := os.WriteFile(filepath.Join(s.dir, "junk.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List = %d entries, want 2", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Fatalf("List order = %s, %s", infos[0].Name, infos[1].Name)
	}
	if infos[0].Placements != 1 {
		t.Fatalf("placement count = %d, want 1", infos[0].Placements)
	}
}

func TestListEmptyDirIsNil(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "nothing-here"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	infos, err := s.List()
	if err != nil || infos != nil {
		t.Fatalf("List = %v, %v, want nil, nil", infos, err)
	}
}

func TestDeleteRemovesSnapshot(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(Snapshot{Name: "tmp"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("tmp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("tmp"); err == nil {
		t.Fatal("Load succeeded after Delete")
	}
}
