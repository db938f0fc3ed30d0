package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ProjectConfig is the allow-list file format. The file is a plain JSON
// contract shared with other tooling, which is why it stays separate from
// the viper-managed app config.
type ProjectConfig struct {
	AllowedProjects []string `json:"allowedProjects"`
}

// LoadAllowedProjects reads the allow-list. A missing or malformed file
// yields an empty list, never an error; filtering simply stays disabled.
func LoadAllowedProjects(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		LogWarn("ignoring malformed allow-list %s: %v", path, err)
		return nil
	}

	return NormalizeAllowedProjects(cfg.AllowedProjects)
}

// SaveAllowedProjects normalizes and writes the allow-list, creating the
// parent directory as needed. It returns the list as stored.
func SaveAllowedProjects(path string, names []string) ([]string, error) {
	normalized := NormalizeAllowedProjects(names)

	cfg := ProjectConfig{AllowedProjects: normalized}
	if cfg.AllowedProjects == nil {
		cfg.AllowedProjects = []string{}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return normalized, nil
}

// NormalizeAllowedProjects trims entries, drops empties, and dedupes with
// the first occurrence winning, preserving order. Order matters: the
// attribution cascade honors it for first-match-wins.
func NormalizeAllowedProjects(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
