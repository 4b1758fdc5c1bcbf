package cache

import "testing"

func TestMemoHitsAndMisses(t *testing.T) {
	m := New[ScreenKey, string](8)
	k := ScreenKey{Name: "DP-1", Width: 2560, Height: 1440}

	if _, ok := m.Get(k); ok {
		t.Fatalf("unexpected hit on empty table")
	}
	m.Add(k, "3x3")
	if v, ok := m.Get(k); !ok || v != "3x3" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	// Same name at a different resolution is a different key.
	if _, ok := m.Get(ScreenKey{Name: "DP-1", Width: 1920, Height: 1080}); ok {
		t.Fatalf("hit for a different geometry")
	}

	got := m.Metrics()
	if got.Hits != 1 || got.Misses != 2 || got.Size != 1 {
		t.Fatalf("metrics = %+v", got)
	}
}

func TestMemoEvictsOldest(t *testing.T) {
	m := New[int, int](2)
	m.Add(1, 10)
	m.Add(2, 20)
	m.Get(1) // refresh 1 so 2 is the eviction candidate
	m.Add(3, 30)

	if _, ok := m.Get(2); ok {
		t.Fatalf("entry 2 should have been evicted")
	}
	if v, ok := m.Get(1); !ok || v != 10 {
		t.Fatalf("entry 1 lost: %v, %v", v, ok)
	}
	got := m.Metrics()
	if got.Size != 2 || got.Evictions != 1 {
		t.Fatalf("metrics = %+v", got)
	}
}

func TestMemoPurgeKeepsCounters(t *testing.T) {
	m := New[int, int](0) // falls back to DefaultSize
	m.Add(1, 10)
	m.Get(1)
	m.Purge()

	if _, ok := m.Get(1); ok {
		t.Fatalf("entry survived purge")
	}
	got := m.Metrics()
	if got.Size != 0 || got.Hits != 1 || got.Misses != 1 {
		t.Fatalf("metrics = %+v", got)
	}
	m.Remove(99) // absent key is a no-op
}
