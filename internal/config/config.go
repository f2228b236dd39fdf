package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Database       string   `koanf:"database"`        // path to library database, empty means XDG default
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music
	LogLevel       string   `koanf:"log_level"`       // "debug", "info", "warn", "error"
	NotifyOnScan   bool     `koanf:"notify_on_scan"`  // desktop notification when a scan finishes

	// Scan behavior
	Scan ScanConfig `koanf:"scan"`

	// Outbound tag write-back throttling
	TagWrite TagWriteConfig `koanf:"tag_write"`
}

// ScanConfig controls the folder scanner.
type ScanConfig struct {
	Workers       int  `koanf:"workers"`        // concurrent scan workers (default: 4)
	RemoveMissing bool `koanf:"remove_missing"` // prune entries whose files are gone
}

// TagWriteConfig throttles writes of tag changes back to files.
type TagWriteConfig struct {
	Rate          float64 `koanf:"rate"`           // writes per second (default: 2)
	Burst         int     `koanf:"burst"`          // burst allowance (default: 4)
	WindowSeconds int     `koanf:"window_seconds"` // recent-write window (default: 5)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		LogLevel: "info",
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Database != "" {
		cfg.Database = expandPath(cfg.Database)
	}
	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/vuplayer/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "vuplayer", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetScanConfig returns the scan configuration with defaults applied.
func (c *Config) GetScanConfig() ScanConfig {
	cfg := c.Scan
	if cfg.Workers <= 0 || cfg.Workers > 32 {
		cfg.Workers = 4
	}
	return cfg
}

// GetTagWriteConfig returns the tag write configuration with defaults
// applied.
func (c *Config) GetTagWriteConfig() TagWriteConfig {
	cfg := c.TagWrite
	if cfg.Rate <= 0 {
		cfg.Rate = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 5
	}
	return cfg
}
