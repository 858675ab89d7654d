// Package config holds all configuration options for winnow.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options.
type Config struct {
	Analysis AnalysisConfig `koanf:"analysis"`
	Exclude  ExcludeConfig  `koanf:"exclude"`
	Cache    CacheConfig    `koanf:"cache"`
	Output   OutputConfig   `koanf:"output"`
	Workers  int            `koanf:"workers"`
}

// AnalysisConfig controls which finding categories are computed and
// which method names are treated as framework-invoked.
type AnalysisConfig struct {
	Classes  bool `koanf:"classes"`
	Methods  bool `koanf:"methods"`
	Packages bool `koanf:"packages"`
	Assets   bool `koanf:"assets"`

	// KeepAlive names are added to the built-in lifecycle exclusion
	// set: declarations with these names are never reported.
	KeepAlive []string `koanf:"keep_alive"`
}

// ExcludeConfig defines source exclusion patterns (gitignore syntax,
// relative to the project root).
type ExcludeConfig struct {
	Patterns []string `koanf:"patterns"`
}

// CacheConfig controls the extraction cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Classes:  true,
			Methods:  true,
			Packages: true,
			Assets:   true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".winnow/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, choosing the parser by
// extension.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config names in the given directories
// (typically the project root, then the working directory) and falls
// back to defaults.
func LoadOrDefault(dirs ...string) *Config {
	names := []string{
		".winnow.yaml",
		".winnow.yml",
		".winnow.json",
		".winnow.toml",
		"winnow.yaml",
		"winnow.yml",
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
