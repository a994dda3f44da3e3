package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/notefs/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultDataFile is the snapshot location. The v2 token is the snapshot
	// format version; see the snapshot package.
	DefaultDataFile = "notefs-v2.json"

	// DefaultSeedDir is where seed markdown documents are read from
	DefaultSeedDir = "posts"

	// DefaultAddr is the listen address for the workspace API server
	DefaultAddr = ":8090"
)

// Config contains runtime configuration values for the note workspace.
type Config struct {
	DataFile string        // Snapshot file path; ".gz" suffix enables compression (Default "notefs-v2.json")
	SeedDir  string        // Directory of seed markdown documents (Default "posts")
	Addr     string        // Listen address for the API server (Default ":8090")
	LogLvl   util.LogLevel // Log verbosity (Default InfoLevel)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions.
type ConfigOverride struct {
	DataFile *string        `yaml:"data_file,omitempty" json:"data_file,omitempty"`
	SeedDir  *string        `yaml:"seed_dir,omitempty" json:"seed_dir,omitempty"`
	Addr     *string        `yaml:"addr,omitempty" json:"addr,omitempty"`
	LogLvl   *util.LogLevel `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		DataFile: DefaultDataFile,
		SeedDir:  DefaultSeedDir,
		Addr:     DefaultAddr,
		LogLvl:   util.InfoLevel,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields pure defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.DataFile != nil {
		c.DataFile = *override.DataFile
	}
	if override.SeedDir != nil {
		c.SeedDir = *override.SeedDir
	}
	if override.Addr != nil {
		c.Addr = *override.Addr
	}
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without
// merging. Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with
// defaults. Convenience wrapper around NewDefaultConfig,
// LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
