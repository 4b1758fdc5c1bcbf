// Package cache provides LRU-backed memo tables with hit accounting.
// Layout selection runs regexes and size tables; region resolution walks
// every zone definition per screen. The engine memoizes both, keyed by
// their full inputs and purged wholesale on reload and display change.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds a memo table when the caller passes no capacity.
const DefaultSize = 64

// ScreenKey identifies a layout-selection input: the screen name plus its
// pixel geometry. Any of the three changing invalidates the decision.
type ScreenKey struct {
	Name   string
	Width  int
	Height int
}

// Metrics is a point-in-time snapshot of a memo table's traffic.
type Metrics struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// Memo is a bounded LRU memo table. Safe for concurrent use.
type Memo[K comparable, V any] struct {
	lru       *lru.Cache[K, V]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New creates a memo table holding at most size entries. A non-positive
// size falls back to DefaultSize.
func New[K comparable, V any](size int) *Memo[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[K, V](size)
	return &Memo[K, V]{lru: c}
}

// Get returns the cached value for k and counts the lookup.
func (m *Memo[K, V]) Get(k K) (V, bool) {
	v, ok := m.lru.Get(k)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Add stores v under k, evicting the least recently used entry when full.
func (m *Memo[K, V]) Add(k K, v V) {
	if m.lru.Add(k, v) {
		m.evictions.Add(1)
	}
}

// Remove drops k if present.
func (m *Memo[K, V]) Remove(k K) {
	m.lru.Remove(k)
}

// Purge drops every entry. Traffic counters survive so metrics stay
// cumulative across display changes.
func (m *Memo[K, V]) Purge() {
	m.lru.Purge()
}

// Metrics reports cumulative traffic and the current entry count.
func (m *Memo[K, V]) Metrics() Metrics {
	return Metrics{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Size:      m.lru.Len(),
	}
}
