package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for tagscope.
type Config struct {
	Index     IndexConfig               `yaml:"index"`
	Languages map[string]LanguageConfig `yaml:"languages"`
	Store     StoreConfig               `yaml:"store"`
	Watch     WatchConfig               `yaml:"watch"`
	Logging   LoggingConfig             `yaml:"logging"`
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	Includes      []string `yaml:"includes"`
	Excludes      []string `yaml:"excludes"`
	Workers       int      `yaml:"workers"` // 0 means one per CPU
	TagsFile      string   `yaml:"tags_file"`
	FileCacheSize int      `yaml:"file_cache_size"`
}

// LanguageConfig lists extra patterns appended to a language's built-in bank.
type LanguageConfig struct {
	Classes   []string `yaml:"classes"`
	Functions []string `yaml:"functions"`
	Objects   []string `yaml:"objects"`
	Lambdas   []string `yaml:"lambdas"`
	Calls     []string `yaml:"calls"`
	Equations []string `yaml:"equations"`
	Chains    []string `yaml:"chains"`
}

// StoreConfig holds snapshot persistence configuration.
type StoreConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WatchConfig holds watch mode configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Includes:      []string{"**/*.c", "**/*.cpp", "**/*.cc", "**/*.cxx", "**/*.h", "**/*.hpp"},
			Excludes:      []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/.tagscope/**"},
			Workers:       0,
			TagsFile:      "tags",
			FileCacheSize: 256,
		},
		Store: StoreConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for tagscope.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try tagscope.yaml in the directory
	path := filepath.Join(dir, "tagscope.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .tagscope/config.yaml
	path = filepath.Join(dir, ".tagscope", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from TAGSCOPE_* environment variables.
func (c *Config) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("TAGSCOPE_LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if workers := strings.TrimSpace(os.Getenv("TAGSCOPE_WORKERS")); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n >= 0 {
			c.Index.Workers = n
		}
	}
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the snapshot database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".tagscope", "index.db")
}

// EnsureDir ensures the .tagscope directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".tagscope"), 0755)
}
