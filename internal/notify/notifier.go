package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/config"
	"market-alerts/internal/logging"
	"market-alerts/internal/message"
	"market-alerts/internal/models"
)

// Notifier delivers a triggered alert outside the process.
type Notifier interface {
	Notify(ctx context.Context, t models.TriggeredAlert) error
}

// Channel is a single outbound destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification is the channel-neutral payload of a triggered alert.
type Notification struct {
	Title     string
	Message   string
	Caution   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// FromTriggered builds a Notification from a triggered alert.
func FromTriggered(t models.TriggeredAlert) Notification {
	var emoji string
	switch t.Direction {
	case models.DirectionAbove:
		emoji = "📈"
	case models.DirectionBelow:
		emoji = "📉"
	default:
		emoji = "⚠️"
	}

	return Notification{
		Title:   fmt.Sprintf("%s Alert Triggered: %s", emoji, t.Symbol),
		Message: t.Message,
		Caution: t.Caution,
		Data: map[string]interface{}{
			"id":          t.ID,
			"symbol":      t.Symbol,
			"label":       t.Label,
			"direction":   t.Direction,
			"alert_price": t.AlertPrice,
			"price":       message.FormatPrice(t.Context.Price),
			"caution":     t.Caution,
		},
		Timestamp: t.Timestamp,
	}
}

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []Channel
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// NewMultiNotifier creates a MultiNotifier with the channels enabled in cfg.
func NewMultiNotifier(cfg config.NotificationConfig, logger zerolog.Logger) *MultiNotifier {
	mn := &MultiNotifier{
		channels: make([]Channel, 0),
		logger:   logging.WithComponent(logger, "notify"),
	}
	if !cfg.Enabled {
		return mn
	}

	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookChannel(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramChannel(cfg.Telegram))
	}

	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch Channel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Channels returns the names of the enabled channels.
func (mn *MultiNotifier) Channels() []string {
	mn.mu.RLock()
	defer mn.mu.RUnlock()

	names := make([]string, 0, len(mn.channels))
	for _, ch := range mn.channels {
		if ch.IsEnabled() {
			names = append(names, ch.Name())
		}
	}
	return names
}

// Notify sends a triggered alert to every enabled channel. A failing
// channel does not stop delivery to the others.
func (mn *MultiNotifier) Notify(ctx context.Context, t models.TriggeredAlert) error {
	return mn.Send(ctx, FromTriggered(t))
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			err = logging.RedactError(err)
			mn.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Notification delivery failed")
			errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// NoOpNotifier is a notifier that does nothing.
type NoOpNotifier struct{}

// Notify does nothing.
func (NoOpNotifier) Notify(context.Context, models.TriggeredAlert) error {
	return nil
}
