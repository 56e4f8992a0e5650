package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"LedgerFile", cfg.LedgerFile, "ledger.db"},
		{"JournalDir", cfg.JournalDir, "journal"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"SyncWrites", cfg.SyncWrites, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	// DataDir should end with .libbrc (we don't assert the full path
	// since it depends on the home directory).
	if !strings.HasSuffix(cfg.DataDir, ".libbrc") {
		t.Errorf("DataDir = %q, want suffix %q", cfg.DataDir, ".libbrc")
	}
}

// ---------------------------------------------------------------------------
// SaveConfig / LoadConfig round-trip tests
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := Config{
		DataDir:    "/tmp/test-libbrc",
		LedgerFile: "records.db",
		JournalDir: "ops",
		LogLevel:   "debug",
		SyncWrites: false,
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded != original {
		t.Errorf("round trip: got %+v, want %+v", loaded, original)
	}
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Config file not created: %v", err)
	}
}

func TestSaveConfig_OutputContainsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# libbrc configuration") {
		t.Error("saved config should start with the header comment")
	}
}

// ---------------------------------------------------------------------------
// LoadConfig error and partial-file tests
// ---------------------------------------------------------------------------

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("loglevel: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig malformed: got %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := "# comment\nloglevel: debug\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	// Unset fields should retain defaults.
	if cfg.LedgerFile != "ledger.db" {
		t.Errorf("LedgerFile = %q, want default %q", cfg.LedgerFile, "ledger.db")
	}
	if !cfg.SyncWrites {
		t.Error("SyncWrites should default to true")
	}
}

// ---------------------------------------------------------------------------
// Path resolution tests
// ---------------------------------------------------------------------------

func TestPathResolution(t *testing.T) {
	cfg := Config{DataDir: "/data", LedgerFile: "ledger.db", JournalDir: "journal"}

	if got, want := cfg.LedgerPath(), filepath.Join("/data", "ledger.db"); got != want {
		t.Errorf("LedgerPath = %q, want %q", got, want)
	}
	if got, want := cfg.JournalPath(), filepath.Join("/data", "journal"); got != want {
		t.Errorf("JournalPath = %q, want %q", got, want)
	}

	cfg.LedgerFile = "/elsewhere/ledger.db"
	if got := cfg.LedgerPath(); got != "/elsewhere/ledger.db" {
		t.Errorf("absolute LedgerPath = %q, want untouched", got)
	}
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.libbrc")
	want := filepath.Join("/home/user/.libbrc", "config.yaml")
	if got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "empty_datadir",
			modify:  func(c *Config) { c.DataDir = "" },
			wantErr: ErrEmptyDataDir,
		},
		{
			name:    "empty_ledger_file",
			modify:  func(c *Config) { c.LedgerFile = "" },
			wantErr: ErrEmptyLedgerFile,
		},
		{
			name:    "empty_journal_dir",
			modify:  func(c *Config) { c.JournalDir = "" },
			wantErr: ErrEmptyJournalDir,
		},
		{
			name:    "bad_loglevel",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ValidateConfig: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error"} {
		t.Run(level, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogLevel = level
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("ValidateConfig with LogLevel %q: %v", level, err)
			}
		})
	}
}
