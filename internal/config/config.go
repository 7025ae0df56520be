package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone attached to exported timestamps
	// (e.g. "Europe/Madrid"). It names the zone only; no conversion is done.
	Timezone string `yaml:"timezone" json:"timezone"`

	// StateFile is the JSON program document the CLI loads and saves.
	StateFile string `yaml:"state_file" json:"state_file"`

	// ICSOut / CSVOut are the default export targets.
	ICSOut string `yaml:"ics_out" json:"ics_out"`
	CSVOut string `yaml:"csv_out" json:"csv_out"`

	// RefreshCron is a cron-style schedule (e.g. "*/30 * * * *") used by
	// watch mode to re-run the exports.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:    "Europe/Madrid",
		StateFile:   "program.json",
		ICSOut:      "program.ics",
		CSVOut:      "program.csv",
		RefreshCron: "*/30 * * * *",
		LogLevel:    "info",
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Madrid"
	}
	if c.StateFile == "" {
		c.StateFile = "program.json"
	}
	if c.ICSOut == "" {
		c.ICSOut = "program.ics"
	}
	if c.CSVOut == "" {
		c.CSVOut = "program.csv"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (parent
//     directory created as needed) and returned.
//   - If the file exists, it is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename),
// creating the parent directory when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".traincal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
