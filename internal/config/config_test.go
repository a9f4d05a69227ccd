package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesTemplateAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ALERTS_DB_DSN", "")
	t.Setenv("ALERTS_USER_ID", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("template config not written: %v", err)
	}
	if cfg.Monitor.Interval != 15*time.Second {
		t.Errorf("interval = %v, want 15s", cfg.Monitor.Interval)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Store.Path != filepath.Join(dir, "alerts.db") {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if len(cfg.Feed.Symbols) == 0 {
		t.Error("expected a default symbol universe")
	}
}

func TestLoadReadsTemplateOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	// The template lists three symbols.
	if got := cfg.SymbolList(); len(got) != 3 || got[0] != "EURUSD" {
		t.Errorf("symbols = %v, want [EURUSD GBPUSD XAUUSD]", got)
	}
	if cfg.Feed.Cooldown != 2*time.Minute {
		t.Errorf("cooldown = %v, want 2m", cfg.Feed.Cooldown)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ALERTS_DB_DSN", "postgres://localhost/alerts?sslmode=disable")
	t.Setenv("ALERTS_USER_ID", "user-42")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.UserID != "user-42" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Notifications.Telegram.ChatID != 12345 {
		t.Errorf("chat id = %d", cfg.Notifications.Telegram.ChatID)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Monitor: MonitorConfig{Interval: time.Second},
			Feed:    FeedConfig{Timeout: time.Second, Symbols: DefaultSymbols()},
			Store:   StoreConfig{Driver: "sqlite", UserID: "u"},
			Log:     LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres" }},
		{"empty user", func(c *Config) { c.Store.UserID = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"duplicate symbol", func(c *Config) { c.Feed.Symbols = append(c.Feed.Symbols, c.Feed.Symbols[0]) }},
		{"non-positive base price", func(c *Config) { c.Feed.Symbols[0].BasePrice = 0 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
