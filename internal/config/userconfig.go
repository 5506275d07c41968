package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfigFileName is the TOML config file for user preferences.
const UserConfigFileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format.
type UserConfig struct {
	// Theme sets the color scheme: "dark", "light", or "system" (default)
	Theme string `toml:"theme"`

	// CacheDir overrides the template cache location (default: ~/.lignore/cache)
	CacheDir string `toml:"cache_dir"`

	// Debug enables the rotating debug log in ~/.lignore
	Debug bool `toml:"debug"`

	// Updates defines self-update check settings
	Updates UpdateSettings `toml:"updates"`
}

// UpdateSettings controls release checking.
type UpdateSettings struct {
	// CheckEnabled toggles update checks entirely
	CheckEnabled bool `toml:"check_enabled"`

	// CheckIntervalHours is how often to hit the releases API (default: 24)
	CheckIntervalHours int `toml:"check_interval_hours"`
}

// DefaultUserConfig returns the settings used when no config.toml exists.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Theme: "system",
		Updates: UpdateSettings{
			CheckEnabled:       true,
			CheckIntervalHours: 24,
		},
	}
}

// LignoreDir returns ~/.lignore, creating nothing.
func LignoreDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".lignore"), nil
}

// LoadUserConfig reads ~/.lignore/config.toml, filling defaults for missing
// fields. A missing file is not an error.
func LoadUserConfig() (UserConfig, error) {
	dir, err := LignoreDir()
	if err != nil {
		return DefaultUserConfig(), err
	}
	return LoadUserConfigFrom(filepath.Join(dir, UserConfigFileName))
}

// LoadUserConfigFrom reads a specific TOML config path.
func LoadUserConfigFrom(path string) (UserConfig, error) {
	cfg := DefaultUserConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultUserConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Updates.CheckIntervalHours <= 0 {
		cfg.Updates.CheckIntervalHours = 24
	}
	switch cfg.Theme {
	case "dark", "light", "system":
	default:
		cfg.Theme = "system"
	}
	return cfg, nil
}

// CreateExampleConfig writes a commented config.toml if none exists, so the
// user has something to edit. Never overwrites an existing file.
func CreateExampleConfig() error {
	dir, err := LignoreDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, UserConfigFileName)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	example := `# lignore user configuration
# This file is loaded on startup. All settings are optional.

# Color scheme: "dark", "light", or "system" (detects the OS/terminal)
theme = "system"

# Override the template cache location (default: ~/.lignore/cache)
# cache_dir = "~/my-cache"

# Write a rotating debug log to ~/.lignore/debug.log
# debug = true

[updates]
# Check GitHub for new releases after each run
check_enabled = true
# How often to hit the releases API, in hours
check_interval_hours = 24
`

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(example), 0o600)
}

// ResolveCacheDir picks the template cache directory: flag override first,
// then config.toml, then ~/.lignore/cache.
func ResolveCacheDir(flagValue string, cfg UserConfig) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.CacheDir != "" {
		return expandHome(cfg.CacheDir)
	}
	dir, err := LignoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

func expandHome(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
