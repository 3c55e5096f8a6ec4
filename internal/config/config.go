package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables overriding the config files.
const (
	EnvDatabasePath   = "WAVESEARCH_DATABASE_PATH"
	EnvLogLevel       = "WAVESEARCH_LOG_LEVEL"
	EnvLibrarySources = "WAVESEARCH_LIBRARY_SOURCES" // os.PathListSeparator separated
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music library
	LyricsDirs     []string `koanf:"lyrics_dirs"`     // folders of "Artist - Title.lrc" (or .txt) files
	LyricsCacheDir string   `koanf:"lyrics_cache_dir"`
	DatabasePath   string   `koanf:"database_path"` // empty means $XDG_DATA_HOME/wavesearch/wavesearch.db
	LogLevel       string   `koanf:"log_level"`     // logrus level name (default: "info")

	// Search tuning
	Search SearchConfig `koanf:"search"`
}

// SearchConfig holds track search configuration.
type SearchConfig struct {
	Limit       int     `koanf:"limit"`       // Max results (default: 50)
	Threshold   float64 `koanf:"threshold"`   // Minimum score 0.0-1.0 (default: 0.3)
	Suggestions int     `koanf:"suggestions"` // Max suggestions (default: 5)
}

func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return loadFrom(getConfigPaths())
}

// loadDotEnv loads variables from path without overriding the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func loadFrom(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Later files win
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	for i, dir := range cfg.LyricsDirs {
		cfg.LyricsDirs[i] = expandPath(dir)
	}
	cfg.LyricsCacheDir = expandPath(cfg.LyricsCacheDir)
	cfg.DatabasePath = expandPath(cfg.DatabasePath)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLibrarySources); v != "" {
		cfg.LibrarySources = nil
		for _, p := range filepath.SplitList(v) {
			if p = strings.TrimSpace(p); p != "" {
				cfg.LibrarySources = append(cfg.LibrarySources, p)
			}
		}
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavesearch/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavesearch", "config.toml"))
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

// HasLibrarySources returns true if at least one library source is configured.
func (c *Config) HasLibrarySources() bool {
	return len(c.LibrarySources) > 0
}

// GetLogLevel returns the configured log level, "info" when unset.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// GetSearchConfig returns the search configuration with defaults applied.
func (c *Config) GetSearchConfig() SearchConfig {
	cfg := c.Search

	// Apply defaults
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = 0.3
	}
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = 5
	}

	return cfg
}
