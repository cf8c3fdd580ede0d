package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigNames are the config file names to search for, in order of preference.
var ConfigNames = []string{".verdict.yml", ".verdict.yaml", "verdict.yml", "verdict.yaml", ".verdict.toml"}

// Discover searches for a config file starting from the given directory,
// traversing parent directories until a config file is found or root is reached.
// Returns the absolute path to the config file.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no config file found (searched for %v)", ConfigNames)
}

// Resolve loads the config at path, or the discovered config when path
// is empty, or the defaults when nothing is found.
func Resolve(path, startDir string) (*Config, string, error) {
	if path == "" {
		found, err := Discover(startDir)
		if err != nil {
			return Default(), "", nil
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
