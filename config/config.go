// Package config holds the host configuration of a libbrc deployment:
// where the record store and operation journal live, how verbose the
// logger is, and whether writes sync to disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFileName is the name of the configuration file inside the data
// directory.
const configFileName = "config.yaml"

// Config holds all host configuration values.
type Config struct {
	// DataDir is the root directory for all persistent state.
	DataDir string `yaml:"datadir"`

	// LedgerFile is the record store file, relative to DataDir unless
	// absolute.
	LedgerFile string `yaml:"ledger_file"`

	// JournalDir is the operation journal directory, relative to
	// DataDir unless absolute.
	JournalDir string `yaml:"journal_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"loglevel"`

	// SyncWrites forces journal writes to sync to disk.
	SyncWrites bool `yaml:"sync_writes"`
}

// DefaultDataDir returns the default data directory, ~/.libbrc, or a
// relative fallback when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libbrc"
	}
	return filepath.Join(home, ".libbrc")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		LedgerFile: "ledger.db",
		JournalDir: "journal",
		LogLevel:   "info",
		SyncWrites: true,
	}
}

// ConfigPath returns the path of the config file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// LedgerPath resolves the ledger file against the data directory.
func (c Config) LedgerPath() string {
	if filepath.IsAbs(c.LedgerFile) {
		return c.LedgerFile
	}
	return filepath.Join(c.DataDir, c.LedgerFile)
}

// JournalPath resolves the journal directory against the data
// directory.
func (c Config) JournalPath() string {
	if filepath.IsAbs(c.JournalDir) {
		return c.JournalDir
	}
	return filepath.Join(c.DataDir, c.JournalDir)
}

// LoadConfig reads the configuration at path. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	header := []byte("# libbrc configuration\n")

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, append(header, data...), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
