// Package enrich supplies best-effort market context for triggered alerts.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"market-alerts/internal/config"
	"market-alerts/internal/models"
)

// Provider supplies sentiment and positioning context. Implementations
// never fail: anything that goes wrong is reported as unavailable.
type Provider interface {
	Sentiment(ctx context.Context) models.Optional[models.SentimentSnapshot]
	Positioning(ctx context.Context, symbol string) models.Optional[models.PositioningBias]
}

// Disabled is a Provider with no context at all.
type Disabled struct{}

// Sentiment always returns unavailable.
func (Disabled) Sentiment(context.Context) models.Optional[models.SentimentSnapshot] {
	return models.Unavailable[models.SentimentSnapshot]()
}

// Positioning always returns unavailable.
func (Disabled) Positioning(context.Context, string) models.Optional[models.PositioningBias] {
	return models.Unavailable[models.PositioningBias]()
}

// NewFromConfig picks a provider: HTTP when any endpoint is configured,
// otherwise synthetic if enabled, otherwise Disabled.
func NewFromConfig(cfg config.EnrichConfig, logger zerolog.Logger) Provider {
	switch {
	case cfg.SentimentURL != "" || cfg.COTURL != "":
		return NewHTTPProvider(HTTPProviderOptions{
			SentimentURL: cfg.SentimentURL,
			COTURL:       cfg.COTURL,
			Timeout:      cfg.Timeout,
		}, logger)
	case cfg.Synthetic:
		return NewSyntheticProvider()
	default:
		return Disabled{}
	}
}

// BiasFromNet classifies a net position. Positions within the dead band
// are neutral.
func BiasFromNet(net, deadBand int64) models.Trend {
	switch {
	case net > deadBand:
		return models.TrendBullish
	case net < -deadBand:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// TrendFromScore classifies a 0-100 sentiment score.
func TrendFromScore(score float64) models.Trend {
	switch {
	case score >= 55:
		return models.TrendBullish
	case score <= 45:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
