package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadResult is a loaded configuration plus everything a caller needs to
// report on it: the files that contributed and non-fatal warnings (skipped
// tile tokens).
type LoadResult struct {
	Config   *Config
	Files    []string // all loaded files, in load order
	Warnings []string
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "gridzones", "config.yaml"), nil
}

// Load reads the merged configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	res, err := LoadWithResult()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithResult loads from the standard location and keeps file and warning
// details for introspection.
func LoadWithResult() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the file at path, resolving include directives relative
// to it. Included files merge in order with the including file applied last.
func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	var files []string

	// A missing root file is not an error; the defaults apply as-is.
	if _, err := os.Stat(path); err == nil {
		seen := make(map[string]struct{})
		var stack []string
		merged, loaded, err := loadRawMerged(path, seen, stack)
		if err != nil {
			return nil, err
		}
		raw = merged
		files = loaded
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg, warnings, err := BuildEffective(raw)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Files: files, Warnings: warnings}, nil
}

func loadRawMerged(path string, seen map[string]struct{}, stack []string) (RawConfig, []string, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, nil, err
	}
	for _, existing := range stack {
		if existing == canon {
			return RawConfig{}, nil, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
		}
	}
	if _, ok := seen[canon]; ok {
		// Already merged through another include path.
		return RawConfig{}, nil, nil
	}
	seen[canon] = struct{}{}

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", canon, err)
	}

	merged := RawConfig{}
	var files []string
	for _, inc := range raw.Include {
		paths, err := expandInclude(canon, inc)
		if err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: include %q: %w", canon, inc, err)
		}
		for _, incPath := range paths {
			incRaw, incFiles, err := loadRawMerged(incPath, seen, append(stack, canon))
			if err != nil {
				return RawConfig{}, nil, err
			}
			merged = merged.merge(incRaw)
			files = append(files, incFiles...)
		}
	}

	// The including file wins over its includes.
	merged = merged.merge(raw)
	files = append(files, canon)
	return merged, files, nil
}

// expandInclude resolves one include value to concrete YAML files. Relative
// paths resolve against the including file; directories contribute their
// *.yaml and *.yml entries in name order.
func expandInclude(from, value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty include path")
	}
	if strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		value = filepath.Join(home, value[2:])
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(filepath.Dir(from), value)
	}

	info, err := os.Stat(value)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{value}, nil
	}

	entries, err := os.ReadDir(value)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			out = append(out, filepath.Join(value, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}
