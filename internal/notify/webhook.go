package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"market-alerts/internal/config"
	"market-alerts/internal/platform/httpclient"
)

// WebhookChannel posts notifications as JSON to a URL.
type WebhookChannel struct {
	url     string
	enabled bool
	client  *httpclient.Client
}

// NewWebhookChannel creates a new WebhookChannel.
func NewWebhookChannel(cfg config.WebhookConfig) *WebhookChannel {
	return &WebhookChannel{
		url:     cfg.URL,
		enabled: cfg.Enabled && cfg.URL != "",
		client: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		}),
	}
}

// Name returns the name of the channel.
func (w *WebhookChannel) Name() string {
	return "webhook"
}

// IsEnabled returns whether the channel is enabled.
func (w *WebhookChannel) IsEnabled() bool {
	return w.enabled
}

// Send posts a notification to the webhook.
func (w *WebhookChannel) Send(ctx context.Context, n Notification) error {
	if !w.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"type":      "alert",
		"title":     n.Title,
		"message":   n.Message,
		"caution":   n.Caution,
		"data":      n.Data,
		"timestamp": n.Timestamp.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MarketAlerts/1.0")

	if _, err := w.client.Do(ctx, req); err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	return nil
}
