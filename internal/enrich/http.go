package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/logging"
	"market-alerts/internal/models"
	"market-alerts/internal/platform/httpclient"
)

// HTTPProvider reads sentiment and COT positioning from JSON endpoints.
//
// The sentiment endpoint returns a SentimentSnapshot document. The COT
// endpoint is queried with ?symbol= and returns a PositioningBias document;
// a missing bias is derived from the commercial net position.
type HTTPProvider struct {
	sentimentURL string
	cotURL       string
	timeout      time.Duration
	client       *httpclient.Client
	logger       zerolog.Logger
}

// HTTPProviderOptions holds options for creating an HTTPProvider.
type HTTPProviderOptions struct {
	SentimentURL string
	COTURL       string
	Timeout      time.Duration
}

// NewHTTPProvider creates a new HTTP context provider.
func NewHTTPProvider(opts HTTPProviderOptions, logger zerolog.Logger) *HTTPProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	return &HTTPProvider{
		sentimentURL: opts.SentimentURL,
		cotURL:       opts.COTURL,
		timeout:      opts.Timeout,
		client: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:    opts.Timeout,
			MaxRetries: 1,
		}),
		logger: logging.WithComponent(logger, "enrich"),
	}
}

// Sentiment fetches the aggregate sentiment snapshot.
func (p *HTTPProvider) Sentiment(ctx context.Context) models.Optional[models.SentimentSnapshot] {
	if p.sentimentURL == "" {
		return models.Unavailable[models.SentimentSnapshot]()
	}

	var snap models.SentimentSnapshot
	if err := p.fetch(ctx, p.sentimentURL, &snap); err != nil {
		p.logger.Warn().Err(apperrors.NewEnrichmentError("sentiment", "", err)).Msg("Sentiment unavailable")
		return models.Unavailable[models.SentimentSnapshot]()
	}
	if snap.OverallScore < 0 || snap.OverallScore > 100 {
		p.logger.Warn().Float64("score", snap.OverallScore).Msg("Sentiment score out of range")
		return models.Unavailable[models.SentimentSnapshot]()
	}
	if snap.Trend == "" {
		snap.Trend = TrendFromScore(snap.OverallScore)
	}
	return models.Present(snap)
}

// Positioning fetches the COT positioning bias for symbol.
func (p *HTTPProvider) Positioning(ctx context.Context, symbol string) models.Optional[models.PositioningBias] {
	if p.cotURL == "" {
		return models.Unavailable[models.PositioningBias]()
	}

	var pos models.PositioningBias
	u := p.cotURL + "?symbol=" + url.QueryEscape(symbol)
	if err := p.fetch(ctx, u, &pos); err != nil {
		log := logging.WithSymbol(p.logger, symbol)
		log.Warn().
			Err(apperrors.NewEnrichmentError("positioning", symbol, err)).
			Msg("Positioning unavailable")
		return models.Unavailable[models.PositioningBias]()
	}
	if pos.Symbol == "" {
		pos.Symbol = symbol
	}
	if pos.Bias == "" {
		pos.Bias = BiasFromNet(pos.CommercialNet, 0)
	}
	return models.Present(pos)
}

func (p *HTTPProvider) fetch(ctx context.Context, u string, target interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.client.Get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
