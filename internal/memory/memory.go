// Package memory persists per-application window placements so apps reopen
// where they were last put. Entries are keyed by application and screen with
// last-write-wins semantics: either a zone reference, replayed against
// whatever that zone resolves to today, or a raw frame.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/1broseidon/gridzones/internal/geom"
)

// Entry is one remembered placement. ZoneKey set means a zone placement;
// otherwise Frame holds the exact rectangle.
type Entry struct {
	App       string     `json:"app"`
	ScreenID  int        `json:"screen_id"`
	ZoneKey   string     `json:"zone_key,omitempty"`
	TileIndex int        `json:"tile_index,omitempty"`
	Frame     *geom.Rect `json:"frame,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Valid reports whether the entry can be stored and replayed.
func (e Entry) Valid() bool {
	return e.App != "" && (e.ZoneKey != "" || e.Frame != nil)
}

// Store is the durable placement database. Safe for concurrent use; SQLite
// serializes writers.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the standard database location under the user's data
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gridzones", "memory.db"), nil
}

// Open opens or creates the placement database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS placements (
		app        TEXT NOT NULL,
		screen_id  INTEGER NOT NULL,
		zone_key   TEXT,
		tile_index INTEGER NOT NULL DEFAULT 0,
		x          INTEGER,
		y          INTEGER,
		width      INTEGER,
		height     INTEGER,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (app, screen_id)
	);
	CREATE INDEX IF NOT EXISTS idx_placements_updated ON placements(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores an entry, replacing any previous placement for the same
// application and screen.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if !e.Valid() {
		return fmt.Errorf("invalid entry for %q: need a zone key or a frame", e.App)
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	var zoneKey *string
	if e.ZoneKey != "" {
		zoneKey = &e.ZoneKey
	}
	var x, y, w, h *int
	if e.Frame != nil {
		x, y, w, h = &e.Frame.X, &e.Frame.Y, &e.Frame.Width, &e.Frame.Height
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO placements (app, screen_id, zone_key, tile_index, x, y, width, height, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(app, screen_id) DO UPDATE SET
		   zone_key = excluded.zone_key,
		   tile_index = excluded.tile_index,
		   x = excluded.x, y = excluded.y,
		   width = excluded.width, height = excluded.height,
		   updated_at = excluded.updated_at`,
		e.App, e.ScreenID, zoneKey, e.TileIndex, x, y, w, h,
		e.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}
	return nil
}

// Lookup returns the placement for an application on a specific screen.
func (s *Store) Lookup(ctx context.Context, app string, screenID int) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT app, screen_id, zone_key, tile_index, x, y, width, height, updated_at
		 FROM placements WHERE app = ? AND screen_id = ?`, app, screenID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup placement: %w", err)
	}
	return e, true, nil
}

// LookupAny returns every placement recorded for an application, newest
// first. Used when the remembered screen is gone and the placement must be
// translated onto another one.
func (s *Store) LookupAny(ctx context.Context, app string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT app, screen_id, zone_key, tile_index, x, y, width, height, updated_at
		 FROM placements WHERE app = ? ORDER BY updated_at DESC, screen_id`, app)
	if err != nil {
		return nil, fmt.Errorf("lookup placements: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Entries returns every stored placement ordered by application then screen.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT app, screen_id, zone_key, tile_index, x, y, width, height, updated_at
		 FROM placements ORDER BY app, screen_id`)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Forget removes every placement for an application and reports how many
// were removed.
func (s *Store) Forget(ctx context.Context, app string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM placements WHERE app = ?`, app)
	if err != nil {
		return 0, fmt.Errorf("forget placements: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Prune removes placements not updated within maxAge and reports how many
// were removed. A non-positive maxAge prunes nothing.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM placements WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune placements: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Export writes every placement as indented JSON.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Import records every valid entry from a JSON export, skipping invalid
// ones, and reports how many were stored.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("decode import: %w", err)
	}
	n := 0
	for _, e := range entries {
		if !e.Valid() {
			continue
		}
		if err := s.Record(ctx, e); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e          Entry
		zoneKey    sql.NullString
		x, y, w, h sql.NullInt64
		updated    string
	)
	err := row.Scan(&e.App, &e.ScreenID, &zoneKey, &e.TileIndex, &x, &y, &w, &h, &updated)
	if err != nil {
		return Entry{}, err
	}
	if zoneKey.Valid {
		e.ZoneKey = zoneKey.String
	}
	if x.Valid {
		e.Frame = &geom.Rect{
			X:      int(x.Int64),
			Y:      int(y.Int64),
			Width:  int(w.Int64),
			Height: int(h.Int64),
		}
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		e.UpdatedAt = t
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TranslateFrame maps a frame remembered on one screen onto another by
// shifting it with the difference of the screen origins, then clamping it
// into the target working area.
func TranslateFrame(frame, from, to geom.Rect) geom.Rect {
	moved := frame.Translate(to.X-from.X, to.Y-from.Y)
	return moved.ClampInto(to)
}
