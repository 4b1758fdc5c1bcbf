// Package config loads and validates the daemon configuration. YAML files are
// decoded strictly, merged over the defaults, and finalized into an effective
// Config with all region tokens and layout rules parsed up front: after a
// successful load no config-derived string is re-parsed on a hot path.
package config

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/1broseidon/gridzones/internal/grid"
)

// MarginsConfig controls tile margins.
type MarginsConfig struct {
	Enabled    bool
	Size       int
	ScreenEdge bool
}

// ZoneDef is one zone definition. Tiles holds the raw tokens as written;
// Regions holds the parsed form, populated when the effective config is
// built. Tokens that fail to parse are dropped from Regions with a load
// warning, so a zone can legitimately end up with zero tiles.
type ZoneDef struct {
	Key         string
	Hotkey      string
	FocusHotkey string
	Tiles       []string
	Regions     []grid.Region
}

// ScreenPattern maps a screen-name regexp to a layout.
type ScreenPattern struct {
	Pattern string
	Layout  string
}

// SizeRule maps a diagonal-inch range to a layout. A zero MaxInches means
// unbounded.
type SizeRule struct {
	MinInches float64
	MaxInches float64
	Layout    string
}

// SizeLayouts holds diagonal-size rules per orientation.
type SizeLayouts struct {
	Landscape []SizeRule
	Portrait  []SizeRule
}

// PositionMemoryConfig controls the durable per-app position store.
type PositionMemoryConfig struct {
	Enabled    bool
	Path       string // empty = ~/.local/share/gridzones/memory.db
	MaxAgeDays int    // 0 = keep forever
}

// EventLogConfig controls the optional rotating action log.
type EventLogConfig struct {
	Enabled   bool
	File      string // empty = ~/.local/share/gridzones/actions.log
	MaxSizeMB int
	MaxFiles  int
}

// Config is the effective daemon configuration.
type Config struct {
	LogLevel   string
	Display    string
	XAuthority string

	Margins MarginsConfig

	DefaultZone      string
	AutoTile         bool
	AutoTileFallback bool

	DebounceMS        int
	SettleTolerancePX int

	ProblemApps  []string
	ExcludedApps []string

	CustomScreens  map[string]string
	ScreenPatterns []ScreenPattern
	SizeLayouts    SizeLayouts

	Zones []ZoneDef

	PositionMemory PositionMemoryConfig
	EventLog       EventLogConfig

	ReconcileIntervalMS int
	DisplaySettleMS     int

	selector *grid.Selector
}

// DefaultConfig returns the configuration used when no file exists. The
// built-in zone library is part of the defaults; user zone definitions
// override by key or extend the set.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:            "info",
		Margins:             MarginsConfig{Enabled: true, Size: 8, ScreenEdge: true},
		DefaultZone:         "center",
		AutoTile:            true,
		AutoTileFallback:    true,
		DebounceMS:          500,
		SettleTolerancePX:   2,
		Zones:               BuiltinZones(),
		PositionMemory:      PositionMemoryConfig{Enabled: true},
		EventLog:            EventLogConfig{Enabled: false, MaxSizeMB: 10, MaxFiles: 3},
		ReconcileIntervalMS: 2000,
		DisplaySettleMS:     400,
	}
}

// ValidationError describes an invalid configuration value by its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func validationErr(path, format string, args ...any) error {
	return &ValidationError{Path: path, Err: fmt.Errorf(format, args...)}
}

var zoneKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// BuildEffective merges raw over the defaults and finalizes the result:
// region tokens are parsed, the layout selector is compiled, and invariants
// are checked. Unparseable tile tokens produce warnings, not errors; the
// affected tile is skipped.
func BuildEffective(raw RawConfig) (*Config, []string, error) {
	cfg := DefaultConfig()
	var warnings []string

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(*raw.LogLevel)
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.Margins != nil {
		if raw.Margins.Enabled != nil {
			cfg.Margins.Enabled = *raw.Margins.Enabled
		}
		if raw.Margins.Size != nil {
			cfg.Margins.Size = *raw.Margins.Size
		}
		if raw.Margins.ScreenEdge != nil {
			cfg.Margins.ScreenEdge = *raw.Margins.ScreenEdge
		}
	}
	if raw.DefaultZone != nil {
		cfg.DefaultZone = *raw.DefaultZone
	}
	if raw.AutoTile != nil {
		cfg.AutoTile = *raw.AutoTile
	}
	if raw.AutoTileFallback != nil {
		cfg.AutoTileFallback = *raw.AutoTileFallback
	}
	if raw.DebounceMS != nil {
		cfg.DebounceMS = *raw.DebounceMS
	}
	if raw.SettleTolerancePX != nil {
		cfg.SettleTolerancePX = *raw.SettleTolerancePX
	}
	if raw.ProblemApps != nil {
		cfg.ProblemApps = raw.ProblemApps
	}
	if raw.ExcludedApps != nil {
		cfg.ExcludedApps = raw.ExcludedApps
	}
	if raw.CustomScreens != nil {
		cfg.CustomScreens = raw.CustomScreens
	}
	for i, p := range raw.ScreenPatterns {
		if p.Pattern == nil || *p.Pattern == "" {
			return nil, nil, validationErr(fmt.Sprintf("screen_patterns[%d].pattern", i), "pattern is required")
		}
		if p.Layout == nil || *p.Layout == "" {
			return nil, nil, validationErr(fmt.Sprintf("screen_patterns[%d].layout", i), "layout is required")
		}
		cfg.ScreenPatterns = append(cfg.ScreenPatterns, ScreenPattern{Pattern: *p.Pattern, Layout: *p.Layout})
	}
	if raw.SizeLayouts != nil {
		var err error
		cfg.SizeLayouts.Landscape, err = buildSizeRules("size_layouts.landscape", raw.SizeLayouts.Landscape)
		if err != nil {
			return nil, nil, err
		}
		cfg.SizeLayouts.Portrait, err = buildSizeRules("size_layouts.portrait", raw.SizeLayouts.Portrait)
		if err != nil {
			return nil, nil, err
		}
	}
	if raw.Zones != nil {
		zones, err := mergeZones(cfg.Zones, raw.Zones)
		if err != nil {
			return nil, nil, err
		}
		cfg.Zones = zones
	}
	if raw.PositionMemory != nil {
		if raw.PositionMemory.Enabled != nil {
			cfg.PositionMemory.Enabled = *raw.PositionMemory.Enabled
		}
		if raw.PositionMemory.Path != nil {
			cfg.PositionMemory.Path = *raw.PositionMemory.Path
		}
		if raw.PositionMemory.MaxAgeDays != nil {
			cfg.PositionMemory.MaxAgeDays = *raw.PositionMemory.MaxAgeDays
		}
	}
	if raw.EventLog != nil {
		if raw.EventLog.Enabled != nil {
			cfg.EventLog.Enabled = *raw.EventLog.Enabled
		}
		if raw.EventLog.File != nil {
			cfg.EventLog.File = *raw.EventLog.File
		}
		if raw.EventLog.MaxSizeMB != nil {
			cfg.EventLog.MaxSizeMB = *raw.EventLog.MaxSizeMB
		}
		if raw.EventLog.MaxFiles != nil {
			cfg.EventLog.MaxFiles = *raw.EventLog.MaxFiles
		}
	}
	if raw.ReconcileIntervalMS != nil {
		cfg.ReconcileIntervalMS = *raw.ReconcileIntervalMS
	}
	if raw.DisplaySettleMS != nil {
		cfg.DisplaySettleMS = *raw.DisplaySettleMS
	}

	warnings = append(warnings, cfg.parseRegions()...)
	if err := cfg.finalize(); err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

func buildSizeRules(path string, raws []RawSizeRule) ([]SizeRule, error) {
	var out []SizeRule
	for i, r := range raws {
		p := fmt.Sprintf("%s[%d]", path, i)
		rule := SizeRule{}
		if r.MinInches != nil {
			rule.MinInches = *r.MinInches
		}
		if r.MaxInches != nil {
			rule.MaxInches = *r.MaxInches
		}
		if r.Layout == nil || *r.Layout == "" {
			return nil, validationErr(p+".layout", "layout is required")
		}
		rule.Layout = *r.Layout
		if rule.MinInches < 0 {
			return nil, validationErr(p+".min_inches", "must not be negative")
		}
		if rule.MaxInches != 0 && rule.MaxInches < rule.MinInches {
			return nil, validationErr(p+".max_inches", "must not be below min_inches")
		}
		out = append(out, rule)
	}
	return out, nil
}

// mergeZones overlays user zone definitions on the built-in set: matching
// keys replace the builtin, new keys append in declaration order.
func mergeZones(base []ZoneDef, raws []RawZone) ([]ZoneDef, error) {
	out := append([]ZoneDef(nil), base...)
	index := make(map[string]int, len(out))
	for i, z := range out {
		index[z.Key] = i
	}
	for i, r := range raws {
		p := fmt.Sprintf("zones[%d]", i)
		if r.Key == nil || *r.Key == "" {
			return nil, validationErr(p+".key", "key is required")
		}
		def := ZoneDef{Key: *r.Key, Tiles: r.Tiles}
		if r.Hotkey != nil {
			def.Hotkey = *r.Hotkey
		}
		if r.FocusHotkey != nil {
			def.FocusHotkey = *r.FocusHotkey
		}
		if j, ok := index[def.Key]; ok {
			out[j] = def
			continue
		}
		index[def.Key] = len(out)
		out = append(out, def)
	}
	return out, nil
}

// parseRegions parses every tile token into its Region form, returning one
// warning per skipped token.
func (c *Config) parseRegions() []string {
	var warnings []string
	for i := range c.Zones {
		z := &c.Zones[i]
		z.Regions = z.Regions[:0]
		for j, token := range z.Tiles {
			r, err := grid.ParseRegion(token)
			if err != nil {
				warnings = append(warnings,
					fmt.Sprintf("zones[%d].tiles[%d] (%s): %v; tile skipped", i, j, z.Key, err))
				continue
			}
			z.Regions = append(z.Regions, r)
		}
	}
	return warnings
}

// finalize validates scalar bounds, zone keys, and compiles the selector.
func (c *Config) finalize() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return validationErr("log_level", "must be one of debug, info, warn, error")
	}
	if c.Margins.Size < 0 || c.Margins.Size > 500 {
		return validationErr("margins.size", "must be 0..500")
	}
	if c.DebounceMS < 0 || c.DebounceMS > 10000 {
		return validationErr("debounce_ms", "must be 0..10000")
	}
	if c.SettleTolerancePX < 0 || c.SettleTolerancePX > 100 {
		return validationErr("settle_tolerance_px", "must be 0..100")
	}
	if c.ReconcileIntervalMS < 0 {
		return validationErr("reconcile_interval_ms", "must not be negative")
	}
	if c.DisplaySettleMS < 0 || c.DisplaySettleMS > 10000 {
		return validationErr("display_settle_ms", "must be 0..10000")
	}
	if c.DefaultZone == "" {
		return validationErr("default_zone", "must not be empty")
	}
	if c.EventLog.MaxSizeMB < 1 {
		return validationErr("event_log.max_size_mb", "must be at least 1")
	}
	if c.EventLog.MaxFiles < 1 {
		return validationErr("event_log.max_files", "must be at least 1")
	}
	if c.PositionMemory.MaxAgeDays < 0 {
		return validationErr("position_memory.max_age_days", "must not be negative")
	}

	seen := make(map[string]bool, len(c.Zones))
	for i, z := range c.Zones {
		p := fmt.Sprintf("zones[%d]", i)
		if !zoneKeyPattern.MatchString(z.Key) {
			return validationErr(p+".key", "key %q must match %s", z.Key, zoneKeyPattern)
		}
		if seen[z.Key] {
			return validationErr(p+".key", "duplicate zone key %q", z.Key)
		}
		seen[z.Key] = true
	}

	sel, err := c.buildSelector()
	if err != nil {
		return err
	}
	c.selector = sel
	return nil
}

func (c *Config) buildSelector() (*grid.Selector, error) {
	sel := &grid.Selector{}
	if len(c.CustomScreens) > 0 {
		sel.Custom = make(map[string]grid.Layout, len(c.CustomScreens))
		for name, spec := range c.CustomScreens {
			l, err := grid.ParseLayout(spec)
			if err != nil {
				return nil, validationErr("custom_screens."+name, "%v", err)
			}
			sel.Custom[name] = l
		}
	}
	for i, p := range c.ScreenPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, validationErr(fmt.Sprintf("screen_patterns[%d].pattern", i), "%v", err)
		}
		l, err := grid.ParseLayout(p.Layout)
		if err != nil {
			return nil, validationErr(fmt.Sprintf("screen_patterns[%d].layout", i), "%v", err)
		}
		sel.Patterns = append(sel.Patterns, grid.PatternRule{Pattern: re, Layout: l})
	}
	var err error
	sel.Sizes.Landscape, err = compileSizeRules("size_layouts.landscape", c.SizeLayouts.Landscape)
	if err != nil {
		return nil, err
	}
	sel.Sizes.Portrait, err = compileSizeRules("size_layouts.portrait", c.SizeLayouts.Portrait)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func compileSizeRules(path string, rules []SizeRule) ([]grid.SizeRule, error) {
	var out []grid.SizeRule
	for i, r := range rules {
		l, err := grid.ParseLayout(r.Layout)
		if err != nil {
			return nil, validationErr(fmt.Sprintf("%s[%d].layout", path, i), "%v", err)
		}
		maxIn := r.MaxInches
		if maxIn == 0 {
			maxIn = math.Inf(1)
		}
		out = append(out, grid.SizeRule{MinInches: r.MinInches, MaxInches: maxIn, Layout: l})
	}
	return out, nil
}

// Selector returns the compiled layout selector. Only valid after a
// successful load.
func (c *Config) Selector() *grid.Selector {
	if c.selector == nil {
		return &grid.Selector{}
	}
	return c.selector
}

// GridMargins returns the margins in the form the grid package consumes.
func (c *Config) GridMargins() grid.Margins {
	return grid.Margins{
		Enabled:    c.Margins.Enabled,
		Size:       c.Margins.Size,
		ScreenEdge: c.Margins.ScreenEdge,
	}
}

// IsExcluded reports whether an application never gets managed, captured, or
// replayed. Matching is case-insensitive on the application name.
func (c *Config) IsExcluded(app string) bool {
	return matchApp(c.ExcludedApps, app)
}

// IsProblemApp reports whether an application gets the extended
// settle-and-verify resize treatment.
func (c *Config) IsProblemApp(app string) bool {
	return matchApp(c.ProblemApps, app)
}

// ZoneByKey returns the definition for a zone key.
func (c *Config) ZoneByKey(key string) (ZoneDef, bool) {
	for _, z := range c.Zones {
		if z.Key == key {
			return z, true
		}
	}
	return ZoneDef{}, false
}

func matchApp(list []string, app string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, app) {
			return true
		}
	}
	return false
}
