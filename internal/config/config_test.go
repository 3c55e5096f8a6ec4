//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde with slash",
			input:    "~/",
			expected: filepath.Join(home, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/wavesearch/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "wavesearch", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestHasLibrarySources(t *testing.T) {
	if (&Config{}).HasLibrarySources() {
		t.Error("empty config should have no library sources")
	}
	if !(&Config{LibrarySources: []string{"/music"}}).HasLibrarySources() {
		t.Error("config with a source should report it")
	}
}

func TestGetLogLevel(t *testing.T) {
	if got := (&Config{}).GetLogLevel(); got != "info" {
		t.Errorf("GetLogLevel() = %q, want %q", got, "info")
	}
	if got := (&Config{LogLevel: "debug"}).GetLogLevel(); got != "debug" {
		t.Errorf("GetLogLevel() = %q, want %q", got, "debug")
	}
}

func TestGetSearchConfig_Defaults(t *testing.T) {
	cfg := (&Config{}).GetSearchConfig()

	if cfg.Limit != 50 {
		t.Errorf("Limit = %d, want 50", cfg.Limit)
	}
	if cfg.Threshold != 0.3 {
		t.Errorf("Threshold = %v, want 0.3", cfg.Threshold)
	}
	if cfg.Suggestions != 5 {
		t.Errorf("Suggestions = %d, want 5", cfg.Suggestions)
	}
}

func TestGetSearchConfig_CustomValues(t *testing.T) {
	c := &Config{Search: SearchConfig{Limit: 10, Threshold: 0.5, Suggestions: 8}}
	cfg := c.GetSearchConfig()

	if cfg != c.Search {
		t.Errorf("GetSearchConfig() = %+v, want %+v", cfg, c.Search)
	}
}

func TestGetSearchConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		search SearchConfig
	}{
		{"negative values", SearchConfig{Limit: -1, Threshold: -0.5, Suggestions: -3}},
		{"threshold above one", SearchConfig{Threshold: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := (&Config{Search: tt.search}).GetSearchConfig()
			if cfg.Limit != 50 || cfg.Threshold != 0.3 || cfg.Suggestions != 5 {
				t.Errorf("GetSearchConfig() = %+v, want defaults", cfg)
			}
		})
	}
}

func TestGetSearchConfig_BoundaryValues(t *testing.T) {
	cfg := (&Config{Search: SearchConfig{Limit: 1, Threshold: 1, Suggestions: 1}}).GetSearchConfig()
	if cfg.Limit != 1 || cfg.Threshold != 1 || cfg.Suggestions != 1 {
		t.Errorf("GetSearchConfig() = %+v, want boundary values kept", cfg)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	return path
}

func TestLoadFrom_EmptyConfig(t *testing.T) {
	cfg, err := loadFrom([]string{writeConfig(t, "")})
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("loadFrom() returned nil config")
	}
	if cfg.HasLibrarySources() {
		t.Errorf("LibrarySources = %v, want none", cfg.LibrarySources)
	}
}

func TestLoadFrom_MissingFiles(t *testing.T) {
	cfg, err := loadFrom([]string{filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.DatabasePath != "" {
		t.Errorf("DatabasePath = %q, want empty", cfg.DatabasePath)
	}
}

func TestLoadFrom_BasicConfig(t *testing.T) {
	path := writeConfig(t, `
library_sources = ["/music", "~/library"]
lyrics_dirs = ["~/lyrics"]
database_path = "/tmp/ws.db"
log_level = " DEBUG "

[search]
limit = 20
threshold = 0.4
suggestions = 3
`)

	cfg, err := loadFrom([]string{path})
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}

	home, _ := os.UserHomeDir()

	if len(cfg.LibrarySources) != 2 {
		t.Fatalf("LibrarySources length = %d, want 2", len(cfg.LibrarySources))
	}
	if cfg.LibrarySources[0] != "/music" {
		t.Errorf("LibrarySources[0] = %q, want %q", cfg.LibrarySources[0], "/music")
	}
	if cfg.LibrarySources[1] != filepath.Join(home, "library") {
		t.Errorf("LibrarySources[1] = %q, want expanded path", cfg.LibrarySources[1])
	}
	if len(cfg.LyricsDirs) != 1 || cfg.LyricsDirs[0] != filepath.Join(home, "lyrics") {
		t.Errorf("LyricsDirs = %v, want [~/lyrics] expanded", cfg.LyricsDirs)
	}
	if cfg.DatabasePath != "/tmp/ws.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/tmp/ws.db")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	search := cfg.GetSearchConfig()
	if search.Limit != 20 || search.Threshold != 0.4 || search.Suggestions != 3 {
		t.Errorf("Search = %+v", search)
	}
}

func TestLoadFrom_LaterFileWins(t *testing.T) {
	first := writeConfig(t, `
database_path = "/first.db"
log_level = "warn"
`)
	second := writeConfig(t, `database_path = "/second.db"`)

	cfg, err := loadFrom([]string{first, second})
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.DatabasePath != "/second.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/second.db")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	if _, err := loadFrom([]string{writeConfig(t, "invalid = [[[")}); err == nil {
		t.Error("loadFrom() expected error for invalid TOML, got nil")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDatabasePath, "/env.db")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLibrarySources, "/a"+string(os.PathListSeparator)+" /b ")

	cfg, err := loadFrom([]string{writeConfig(t, `
database_path = "/file.db"
library_sources = ["/file"]
`)})
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.DatabasePath != "/env.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/env.db")
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "error")
	}
	if len(cfg.LibrarySources) != 2 || cfg.LibrarySources[0] != "/a" || cfg.LibrarySources[1] != "/b" {
		t.Errorf("LibrarySources = %v, want [/a /b]", cfg.LibrarySources)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	// Missing file is not an error
	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("loadDotEnv(missing) error = %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvLogLevel+"=trace\n"), 0o600); err != nil {
		t.Fatalf("could not write .env: %v", err)
	}
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvLogLevel); got != "trace" {
		t.Errorf("%s = %q, want %q", EnvLogLevel, got, "trace")
	}
}
