package cli

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"market-alerts/internal/config"
	"market-alerts/internal/logging"
	"market-alerts/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	storeOnce sync.Once
	store     *store.SQLStore
	storeErr  error
}

// Store opens the configured alert store on first use.
func (app *App) Store(ctx context.Context) (*store.SQLStore, error) {
	app.storeOnce.Do(func() {
		sc := app.Config.Store
		app.store, app.storeErr = store.Open(ctx, sc.Driver, sc.Path, sc.DSN, sc.UserID)
		if app.storeErr == nil {
			app.Logger.Debug().Str("driver", app.store.Driver()).Str("user_id", sc.UserID).Msg("Alert store opened")
		}
	})
	return app.store, app.storeErr
}

// Close releases resources opened by commands.
func (app *App) Close() error {
	if app.store != nil {
		return app.store.Close()
	}
	return nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "market-alerts",
		Short: "Price alert monitor with market context",
		Long: `market-alerts watches live quotes against user-defined price levels.

When a level is crossed the alert fires once, is enriched with sentiment and
COT positioning, and is delivered as a notification with a caution label.

Use 'market-alerts serve' to run the engine with its HTTP API.
Use 'market-alerts watch' to monitor from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				loaded, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = loaded
				app.Logger = logging.NewLoggerWithConfig(loaded.LoggingConfig())
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/market-alerts)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAlertCommands(rootCmd, app)
	addFeedCommands(rootCmd, app)
	addMonitoringCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("market-alerts v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{"path": dir})
			} else {
				output.Println(dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Monitoring")
	output.Printf("  Interval:        %s\n", cfg.Monitor.Interval)
	output.Printf("  Immediate tick:  %v\n", cfg.Monitor.ImmediateFirstTick)
	output.Printf("  Start paused:    %v\n", cfg.Monitor.StartPaused)
	output.Println()

	output.Bold("Price Feed")
	output.Printf("  Endpoint:        %s\n", orNone(cfg.Feed.BaseURL))
	output.Printf("  Timeout:         %s\n", cfg.Feed.Timeout)
	output.Printf("  Breaker:         %d failures, %s cooldown\n", cfg.Feed.FailureThreshold, cfg.Feed.Cooldown)
	output.Printf("  Symbols:         %d\n", len(cfg.Feed.Symbols))
	output.Println()

	output.Bold("Market Context")
	output.Printf("  Sentiment URL:   %s\n", orNone(cfg.Enrich.SentimentURL))
	output.Printf("  COT URL:         %s\n", orNone(cfg.Enrich.COTURL))
	output.Printf("  Synthetic:       %v\n", cfg.Enrich.Synthetic)
	output.Println()

	output.Bold("Store")
	output.Printf("  Driver:          %s\n", cfg.Store.Driver)
	if cfg.Store.Driver == "postgres" {
		output.Printf("  DSN:             %s\n", "(set)")
	} else {
		output.Printf("  Path:            %s\n", cfg.Store.Path)
	}
	output.Printf("  User:            %s\n", cfg.Store.UserID)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:         %v\n", cfg.Notifications.Enabled)
	output.Printf("  Webhook:         %v\n", cfg.Notifications.Webhook.Enabled)
	output.Printf("  Telegram:        %v\n", cfg.Notifications.Telegram.Enabled)
	output.Println()

	output.Bold("Coach")
	output.Printf("  Model:           %s\n", cfg.Coach.Model)
	output.Printf("  API key:         %v\n", cfg.Credentials.OpenAIKey != "")

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
