// Package config provides configuration management for the alert engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"market-alerts/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Monitor       MonitorConfig      `mapstructure:"monitor"`
	Feed          FeedConfig         `mapstructure:"feed"`
	Enrich        EnrichConfig       `mapstructure:"enrich"`
	Store         StoreConfig        `mapstructure:"store"`
	Server        ServerConfig       `mapstructure:"server"`
	Log           LogConfig          `mapstructure:"log"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Coach         CoachConfig        `mapstructure:"coach"`
	Credentials   Credentials        `mapstructure:"-" json:"-"` // Loaded from env
}

// MonitorConfig holds polling loop configuration.
type MonitorConfig struct {
	Interval           time.Duration `mapstructure:"interval"`
	ImmediateFirstTick bool          `mapstructure:"immediate_first_tick"`
	StartPaused        bool          `mapstructure:"start_paused"`
}

// FeedConfig holds price feed configuration.
type FeedConfig struct {
	BaseURL          string         `mapstructure:"base_url"`
	Timeout          time.Duration  `mapstructure:"timeout"`
	RequestsPerSec   int            `mapstructure:"requests_per_sec"`
	MaxRetries       int            `mapstructure:"max_retries"`
	FailureThreshold int            `mapstructure:"failure_threshold"`
	Cooldown         time.Duration  `mapstructure:"cooldown"`
	Symbols          []SymbolConfig `mapstructure:"symbols"`
}

// SymbolConfig describes one instrument of the watched universe.
type SymbolConfig struct {
	Symbol     string  `mapstructure:"symbol"`
	FeedSymbol string  `mapstructure:"feed_symbol"`
	BasePrice  float64 `mapstructure:"base_price"`
}

// EnrichConfig holds market context configuration.
type EnrichConfig struct {
	SentimentURL string        `mapstructure:"sentiment_url"`
	COTURL       string        `mapstructure:"cot_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Synthetic    bool          `mapstructure:"synthetic"`
}

// StoreConfig holds alert persistence configuration.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn" json:"-"`
	UserID string `mapstructure:"user_id"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// NotificationConfig holds outbound notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"-"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// CoachConfig holds AI coaching configuration.
type CoachConfig struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAIKey string
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/market-alerts"
	}
	return filepath.Join(home, ".config", "market-alerts")
}

// DefaultSymbols is the universe watched when none is configured.
func DefaultSymbols() []SymbolConfig {
	return []SymbolConfig{
		{Symbol: "EURUSD", FeedSymbol: "EURUSD=X", BasePrice: 1.0850},
		{Symbol: "GBPUSD", FeedSymbol: "GBPUSD=X", BasePrice: 1.2650},
		{Symbol: "USDJPY", FeedSymbol: "JPY=X", BasePrice: 149.50},
		{Symbol: "AUDUSD", FeedSymbol: "AUDUSD=X", BasePrice: 0.6550},
		{Symbol: "USDCAD", FeedSymbol: "CAD=X", BasePrice: 1.3550},
		{Symbol: "XAUUSD", FeedSymbol: "GC=F", BasePrice: 2050.00},
		{Symbol: "BTCUSD", FeedSymbol: "BTC-USD", BasePrice: 43000.00},
		{Symbol: "SPX500", FeedSymbol: "^GSPC", BasePrice: 4750.00},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// Environment from .env if present
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	cfg := &Config{}
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if len(cfg.Feed.Symbols) == 0 {
		cfg.Feed.Symbols = DefaultSymbols()
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(configDir, "alerts.db")
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(configDir, "logs", "alerts.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("monitor.interval", "15s")
	v.SetDefault("monitor.immediate_first_tick", true)
	v.SetDefault("monitor.start_paused", false)

	v.SetDefault("feed.base_url", "https://query1.finance.yahoo.com/v7/finance/quote")
	v.SetDefault("feed.timeout", "5s")
	v.SetDefault("feed.requests_per_sec", 2)
	v.SetDefault("feed.max_retries", 2)
	v.SetDefault("feed.failure_threshold", 3)
	v.SetDefault("feed.cooldown", "2m")

	v.SetDefault("enrich.timeout", "3s")
	v.SetDefault("enrich.synthetic", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.user_id", "local")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", false)

	v.SetDefault("coach.model", "gpt-4o-mini")
	v.SetDefault("coach.timeout", "20s")
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found, write template and continue on defaults
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAIKey = v
	}
	if v := os.Getenv("ALERTS_DB_DSN"); v != "" {
		cfg.Store.DSN = v
		cfg.Store.Driver = "postgres"
	}
	if v := os.Getenv("ALERTS_USER_ID"); v != "" {
		cfg.Store.UserID = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		var id int64
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			cfg.Notifications.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be positive")
	}

	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite' or 'postgres')", c.Store.Driver)
	}
	if c.Store.UserID == "" {
		return fmt.Errorf("store.user_id must not be empty")
	}

	if c.Log.Level != "" && !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	seen := make(map[string]bool, len(c.Feed.Symbols))
	for _, s := range c.Feed.Symbols {
		if s.Symbol == "" {
			return fmt.Errorf("feed.symbols entry with empty symbol")
		}
		if seen[s.Symbol] {
			return fmt.Errorf("duplicate feed symbol: %s", s.Symbol)
		}
		seen[s.Symbol] = true
		if s.BasePrice <= 0 {
			return fmt.Errorf("feed symbol %s: base_price must be positive", s.Symbol)
		}
	}

	return nil
}

// LoggingConfig converts the log section to a logging.LogConfig.
func (c *Config) LoggingConfig() logging.LogConfig {
	lc := logging.DefaultLogConfig()
	lc.Level = c.Log.Level
	lc.Console = c.Log.Console
	lc.File = c.Log.File
	if c.Log.Path != "" {
		lc.FilePath = c.Log.Path
	}
	return lc
}

// SymbolList returns the configured symbol names in order.
func (c *Config) SymbolList() []string {
	symbols := make([]string, 0, len(c.Feed.Symbols))
	for _, s := range c.Feed.Symbols {
		symbols = append(symbols, s.Symbol)
	}
	return symbols
}
