// Package coach asks an AI completion service to explain a triggered alert.
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/config"
	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/logging"
	"market-alerts/internal/message"
	"market-alerts/internal/models"
)

const systemPrompt = `You are a disciplined trading coach. You explain price alerts to
retail traders in plain language. You never give financial advice or tell the trader
to buy or sell. Keep answers under 120 words.`

// Coach turns a triggered alert into coaching text.
type Coach struct {
	completer Completer
	model     string
	timeout   time.Duration
	logger    zerolog.Logger
}

// New creates a coach. A nil completer makes every call unavailable.
func New(completer Completer, model string, timeout time.Duration, logger zerolog.Logger) *Coach {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Coach{
		completer: completer,
		model:     model,
		timeout:   timeout,
		logger:    logging.WithComponent(logger, "coach"),
	}
}

// NewFromConfig creates a coach backed by OpenAI when an API key is set.
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Coach {
	var completer Completer
	if cfg.Credentials.OpenAIKey != "" {
		completer = NewOpenAIClient(cfg.Credentials.OpenAIKey)
	}
	return New(completer, cfg.Coach.Model, cfg.Coach.Timeout, logger)
}

// Available reports whether a completion service is configured.
func (c *Coach) Available() bool {
	return c.completer != nil
}

// Explain returns coaching text for t. Any failure is reported as
// ErrCompletionUnavailable.
func (c *Coach) Explain(ctx context.Context, t models.TriggeredAlert) (string, error) {
	if c.completer == nil {
		return "", apperrors.ErrCompletionUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.completer.Complete(ctx, c.model, Prompt(t))
	if err != nil {
		log := logging.WithAlertID(c.logger, t.ID)
		log.Warn().Err(err).Msg("Coach completion failed")
		return "", fmt.Errorf("%w: %v", apperrors.ErrCompletionUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", apperrors.ErrCompletionUnavailable)
	}
	return text, nil
}

// Prompt renders the user prompt for a triggered alert.
func Prompt(t models.TriggeredAlert) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "My %s alert %q on %s just triggered.\n", t.Direction, t.Label, t.Symbol)
	fmt.Fprintf(&sb, "Alert level: %s. Price at trigger: %s.\n",
		message.FormatPrice(t.AlertPrice), message.FormatPrice(t.Context.Price))

	if s, ok := t.Context.Sentiment.Get(); ok {
		fmt.Fprintf(&sb, "Retail sentiment: %.0f%% %s (change %+.1f).\n", s.OverallScore, s.Trend, s.ChangeSincePrior)
	} else {
		sb.WriteString("Retail sentiment: unavailable.\n")
	}
	if p, ok := t.Context.Positioning.Get(); ok {
		fmt.Fprintf(&sb, "COT: commercials %s (net %d), speculators net %d.\n", p.Bias, p.CommercialNet, p.SpeculativeNet)
	} else {
		sb.WriteString("COT: unavailable.\n")
	}

	fmt.Fprintf(&sb, "The engine rated this %s.\n", t.Caution)
	sb.WriteString("Explain what this combination of signals usually means and what I should check before acting.")
	return sb.String()
}
