// Package config loads and saves casm's TOML configuration file, following
// the same load-defaults-then-overlay shape the teacher's config package
// uses for the ARM emulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable setting casm reads at startup.
type Config struct {
	Execution struct {
		MaxLabelJumps uint64 `toml:"max_label_jumps"`
		MemorySize    int    `toml:"memory_size"`
		StorageSize   int    `toml:"storage_size"`
		EntryFile     string `toml:"entry_file"`
	} `toml:"execution"`

	Display struct {
		ColorOutput     bool   `toml:"color_output"`
		NumberFormat    string `toml:"number_format"` // dec, hex
		RefreshMillis   int    `toml:"refresh_millis"`
		RegistersPerRow int    `toml:"registers_per_row"`
	} `toml:"display"`

	Trace struct {
		Enabled         bool   `toml:"enabled"`
		OutputFile      string `toml:"output_file"`
		FilterRegisters string `toml:"filter_registers"` // comma-separated: "R1,R2"
		MaxEntries      int    `toml:"max_entries"`
	} `toml:"trace"`

	Statistics struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // text, json
	} `toml:"statistics"`
}

// DefaultConfig returns the configuration casm runs with absent a config file.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxLabelJumps = 1000
	cfg.Execution.MemorySize = 64
	cfg.Execution.StorageSize = 64
	cfg.Execution.EntryFile = ""

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "dec"
	cfg.Display.RefreshMillis = 100
	cfg.Display.RegistersPerRow = 5

	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.FilterRegisters = ""
	cfg.Trace.MaxEntries = 10000

	cfg.Statistics.Enabled = false
	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"

	return cfg
}

// GetConfigPath returns the platform-specific config file path, creating
// its containing directory if it doesn't already exist.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "casm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "casm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path, creating it
// if it doesn't already exist.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "casm", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "casm", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file path.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to defaults when
// the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
