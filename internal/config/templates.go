package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Market Alerts Configuration

[monitor]
# Polling interval for alert evaluation
interval = "15s"
# Evaluate once immediately when monitoring starts
immediate_first_tick = true
# Start with monitoring paused
start_paused = false

[feed]
# Quote endpoint queried with ?symbols=A,B
base_url = "https://query1.finance.yahoo.com/v7/finance/quote"
# Bound on a single live fetch; synthetic prices are used on timeout
timeout = "5s"
requests_per_sec = 2
max_retries = 2
# Consecutive live failures before skipping the live feed
failure_threshold = 3
# How long to stay on synthetic prices after the threshold is reached
cooldown = "2m"

[[feed.symbols]]
symbol = "EURUSD"
feed_symbol = "EURUSD=X"
base_price = 1.0850

[[feed.symbols]]
symbol = "GBPUSD"
feed_symbol = "GBPUSD=X"
base_price = 1.2650

[[feed.symbols]]
symbol = "XAUUSD"
feed_symbol = "GC=F"
base_price = 2050.0

[enrich]
# JSON endpoints for market context; leave empty to disable
sentiment_url = ""
cot_url = ""
timeout = "3s"
# Use generated context when no endpoints are configured
synthetic = true

[store]
# sqlite or postgres
driver = "sqlite"
# sqlite database file (default: <config dir>/alerts.db)
path = ""
# postgres connection string (or ALERTS_DB_DSN)
dsn = ""
# owning user for stored alerts
user_id = "local"

[server]
addr = ":8080"

[log]
level = "info"
console = true
file = false
path = ""

[notifications]
enabled = false

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = 0

[coach]
model = "gpt-4o-mini"
timeout = "20s"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0600)
}
