package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths:
//
//	include: ~/.config/gridzones/work.yaml
//
//	include:
//	  - zones.d
//	  - extra.yaml
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		path, err := includePath(value)
		if err != nil {
			return err
		}
		*l = IncludeList{path}
		return nil
	case yaml.SequenceNode:
		paths := make(IncludeList, 0, len(value.Content))
		for _, item := range value.Content {
			path, err := includePath(item)
			if err != nil {
				return err
			}
			paths = append(paths, path)
		}
		*l = paths
		return nil
	}
	return fmt.Errorf("include must be a string or list of strings")
}

func includePath(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return "", fmt.Errorf("include entries must be strings")
	}
	return node.Value, nil
}

type RawMargins struct {
	Enabled    *bool `yaml:"enabled"`
	Size       *int  `yaml:"size"`
	ScreenEdge *bool `yaml:"screen_edge"`
}

type RawScreenPattern struct {
	Pattern *string `yaml:"pattern"`
	Layout  *string `yaml:"layout"`
}

type RawSizeRule struct {
	MinInches *float64 `yaml:"min_inches"`
	MaxInches *float64 `yaml:"max_inches"`
	Layout    *string  `yaml:"layout"`
}

type RawSizeLayouts struct {
	Landscape []RawSizeRule `yaml:"landscape"`
	Portrait  []RawSizeRule `yaml:"portrait"`
}

type RawZone struct {
	Key         *string  `yaml:"key"`
	Hotkey      *string  `yaml:"hotkey"`
	FocusHotkey *string  `yaml:"focus_hotkey"`
	Tiles       []string `yaml:"tiles"`
}

type RawPositionMemory struct {
	Enabled    *bool   `yaml:"enabled"`
	Path       *string `yaml:"path"`
	MaxAgeDays *int    `yaml:"max_age_days"`
}

type RawEventLog struct {
	Enabled   *bool   `yaml:"enabled"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawConfig struct {
	Include             IncludeList        `yaml:"include"`
	LogLevel            *string            `yaml:"log_level"`
	Display             *string            `yaml:"display"`
	XAuthority          *string            `yaml:"xauthority"`
	Margins             *RawMargins        `yaml:"margins"`
	DefaultZone         *string            `yaml:"default_zone"`
	AutoTile            *bool              `yaml:"auto_tile"`
	AutoTileFallback    *bool              `yaml:"auto_tile_fallback"`
	DebounceMS          *int               `yaml:"debounce_ms"`
	SettleTolerancePX   *int               `yaml:"settle_tolerance_px"`
	ProblemApps         []string           `yaml:"problem_apps"`
	ExcludedApps        []string           `yaml:"excluded_apps"`
	CustomScreens       map[string]string  `yaml:"custom_screens"`
	ScreenPatterns      []RawScreenPattern `yaml:"screen_patterns"`
	SizeLayouts         *RawSizeLayouts    `yaml:"size_layouts"`
	Zones               []RawZone          `yaml:"zones"`
	PositionMemory      *RawPositionMemory `yaml:"position_memory"`
	EventLog            *RawEventLog       `yaml:"event_log"`
	ReconcileIntervalMS *int               `yaml:"reconcile_interval_ms"`
	DisplaySettleMS     *int               `yaml:"display_settle_ms"`
}

// merge overlays other on top of the receiver. Scalar fields from other win
// when set; zone lists concatenate (later definitions override by key when
// the effective config is built); other lists replace wholesale; maps merge
// per key.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.Display != nil {
		out.Display = other.Display
	}
	if other.XAuthority != nil {
		out.XAuthority = other.XAuthority
	}
	if other.Margins != nil {
		if out.Margins == nil {
			out.Margins = &RawMargins{}
		}
		m := *out.Margins
		if other.Margins.Enabled != nil {
			m.Enabled = other.Margins.Enabled
		}
		if other.Margins.Size != nil {
			m.Size = other.Margins.Size
		}
		if other.Margins.ScreenEdge != nil {
			m.ScreenEdge = other.Margins.ScreenEdge
		}
		out.Margins = &m
	}
	if other.DefaultZone != nil {
		out.DefaultZone = other.DefaultZone
	}
	if other.AutoTile != nil {
		out.AutoTile = other.AutoTile
	}
	if other.AutoTileFallback != nil {
		out.AutoTileFallback = other.AutoTileFallback
	}
	if other.DebounceMS != nil {
		out.DebounceMS = other.DebounceMS
	}
	if other.SettleTolerancePX != nil {
		out.SettleTolerancePX = other.SettleTolerancePX
	}
	if other.ProblemApps != nil {
		out.ProblemApps = other.ProblemApps
	}
	if other.ExcludedApps != nil {
		out.ExcludedApps = other.ExcludedApps
	}
	if other.CustomScreens != nil {
		merged := make(map[string]string, len(out.CustomScreens)+len(other.CustomScreens))
		for k, v := range out.CustomScreens {
			merged[k] = v
		}
		for k, v := range other.CustomScreens {
			merged[k] = v
		}
		out.CustomScreens = merged
	}
	if other.ScreenPatterns != nil {
		out.ScreenPatterns = other.ScreenPatterns
	}
	if other.SizeLayouts != nil {
		out.SizeLayouts = other.SizeLayouts
	}
	if other.Zones != nil {
		out.Zones = append(append([]RawZone(nil), out.Zones...), other.Zones...)
	}
	if other.PositionMemory != nil {
		if out.PositionMemory == nil {
			out.PositionMemory = &RawPositionMemory{}
		}
		p := *out.PositionMemory
		if other.PositionMemory.Enabled != nil {
			p.Enabled = other.PositionMemory.Enabled
		}
		if other.PositionMemory.Path != nil {
			p.Path = other.PositionMemory.Path
		}
		if other.PositionMemory.MaxAgeDays != nil {
			p.MaxAgeDays = other.PositionMemory.MaxAgeDays
		}
		out.PositionMemory = &p
	}
	if other.EventLog != nil {
		if out.EventLog == nil {
			out.EventLog = &RawEventLog{}
		}
		e := *out.EventLog
		if other.EventLog.Enabled != nil {
			e.Enabled = other.EventLog.Enabled
		}
		if other.EventLog.File != nil {
			e.File = other.EventLog.File
		}
		if other.EventLog.MaxSizeMB != nil {
			e.MaxSizeMB = other.EventLog.MaxSizeMB
		}
		if other.EventLog.MaxFiles != nil {
			e.MaxFiles = other.EventLog.MaxFiles
		}
		out.EventLog = &e
	}
	if other.ReconcileIntervalMS != nil {
		out.ReconcileIntervalMS = other.ReconcileIntervalMS
	}
	if other.DisplaySettleMS != nil {
		out.DisplaySettleMS = other.DisplaySettleMS
	}
	return out
}
