// Package config loads and saves rupee's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all rupee configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Alerts     AlertsConfig     `toml:"alerts"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath      string `toml:"db_path,omitempty"`
	DefaultDays int    `toml:"default_days"`
}

// BudgetConfig holds the amounts limits are seeded with on first run.
// Changing them later does not rewrite existing limits; use `rupee limits set`.
type BudgetConfig struct {
	DailyINR        float64 `toml:"daily_inr"`
	MonthlyINR      float64 `toml:"monthly_inr"`
	BillsMonthlyINR float64 `toml:"bills_monthly_inr"`
	WasteWeeklyKg   float64 `toml:"waste_weekly_kg"`
}

// AlertsConfig controls threshold alerting and the notification log.
type AlertsConfig struct {
	Repeat     bool `toml:"repeat"`      // alert on every mutation while over a limit
	Keep       int  `toml:"keep"`        // cap on stored notifications, 0 = unbounded
	RemindDays int  `toml:"remind_days"` // bill reminder horizon
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background daemon settings.
type DaemonConfig struct {
	Addr     string `toml:"addr"`
	Interval string `toml:"interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// PollInterval parses Daemon.Interval, falling back to one minute.
func (c Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Daemon.Interval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 7,
		},
		Budget: BudgetConfig{
			DailyINR:        1000,
			MonthlyINR:      25000,
			BillsMonthlyINR: 8000,
			WasteWeeklyKg:   10,
		},
		Alerts: AlertsConfig{
			RemindDays: 3,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:     "127.0.0.1:8787",
			Interval: "1m",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rupee")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rupee")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rupee")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "rupee")
}

// DBPath returns the database path: RUPEE_DB, then general.db_path, then the
// default under DataDir.
func DBPath(cfg Config) string {
	if p := os.Getenv("RUPEE_DB"); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "rupee.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
