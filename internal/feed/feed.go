// Package feed provides the price snapshot source for alert evaluation.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/config"
	apperrors "market-alerts/internal/errors"
	"market-alerts/internal/logging"
	"market-alerts/internal/models"
	"market-alerts/internal/resilience"
)

// Feed supplies price snapshots. Snapshot never fails: live errors are
// absorbed into synthetic prices.
type Feed interface {
	Snapshot(ctx context.Context) models.PriceSnapshot
	LastSource() models.PriceSource
}

// Status describes the adapter for observability.
type Status struct {
	Source      models.PriceSource              `json:"source"`
	LastFetched time.Time                       `json:"last_fetched"`
	LastError   string                          `json:"last_error,omitempty"`
	Breaker     *resilience.CircuitBreakerStats `json:"breaker,omitempty"`
}

// Adapter fetches from a live source with a bounded timeout and falls back
// to the synthetic generator.
type Adapter struct {
	instruments []Instrument
	live        LiveSource
	synthetic   *Synthetic
	breaker     *resilience.CircuitBreaker
	timeout     time.Duration
	logger      zerolog.Logger

	mu          sync.RWMutex
	lastSource  models.PriceSource
	lastFetched time.Time
	lastErr     error
}

// AdapterConfig holds configuration for the feed adapter.
type AdapterConfig struct {
	Instruments []Instrument
	Live        LiveSource // nil means synthetic only
	Timeout     time.Duration
	Breaker     *resilience.CircuitBreaker
}

// NewAdapter creates a new feed adapter.
func NewAdapter(cfg AdapterConfig, logger zerolog.Logger) *Adapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Adapter{
		instruments: cfg.Instruments,
		live:        cfg.Live,
		synthetic:   NewSynthetic(cfg.Instruments),
		breaker:     cfg.Breaker,
		timeout:     cfg.Timeout,
		logger:      logging.WithComponent(logger, "feed"),
		lastSource:  models.SourceSynthetic,
	}
}

// Synthetic exposes the fallback generator.
func (a *Adapter) Synthetic() *Synthetic {
	return a.synthetic
}

// Snapshot returns the latest prices for the configured universe.
func (a *Adapter) Snapshot(ctx context.Context) models.PriceSnapshot {
	start := time.Now()

	quotes, err := a.fetchLive(ctx)
	if err == nil {
		snap := models.PriceSnapshot{
			Quotes:    quotes,
			Source:    models.SourceLive,
			FetchedAt: time.Now(),
		}
		a.record(snap, nil)
		logging.LogFeedFetch(a.logger, string(models.SourceLive), len(quotes), time.Since(start), nil)
		return snap
	}

	snap := a.synthetic.Snapshot()
	a.record(snap, err)
	if a.live != nil {
		a.logger.Warn().Err(err).Msg("Live feed unavailable, using synthetic prices")
	}
	logging.LogFeedFetch(a.logger, string(models.SourceSynthetic), len(snap.Quotes), time.Since(start), nil)
	return snap
}

func (a *Adapter) fetchLive(ctx context.Context) (map[string]models.Quote, error) {
	if a.live == nil {
		return nil, apperrors.ErrFeedUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	fetch := func(ctx context.Context) (map[string]models.Quote, error) {
		return a.live.Fetch(ctx, a.instruments)
	}

	var (
		quotes map[string]models.Quote
		err    error
	)
	if a.breaker != nil {
		quotes, err = resilience.ExecuteWithResult(a.breaker, ctx, fetch)
	} else {
		quotes, err = fetch(ctx)
	}
	if err != nil {
		return nil, apperrors.NewFeedError(a.live.Name(), err)
	}
	return quotes, nil
}

func (a *Adapter) record(snap models.PriceSnapshot, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSource = snap.Source
	a.lastFetched = snap.FetchedAt
	a.lastErr = err
}

// LastSource returns whether the last snapshot was live or synthetic.
func (a *Adapter) LastSource() models.PriceSource {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastSource
}

// Status returns the adapter status.
func (a *Adapter) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := Status{
		Source:      a.lastSource,
		LastFetched: a.lastFetched,
	}
	if a.lastErr != nil && a.live != nil {
		st.LastError = a.lastErr.Error()
	}
	if a.breaker != nil {
		stats := a.breaker.Stats()
		st.Breaker = &stats
	}
	return st
}

// InstrumentsFromConfig converts configured symbols into instruments.
func InstrumentsFromConfig(symbols []config.SymbolConfig) []Instrument {
	out := make([]Instrument, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, Instrument{
			Symbol:     s.Symbol,
			FeedSymbol: s.FeedSymbol,
			BasePrice:  s.BasePrice,
		})
	}
	return out
}

// NewFromConfig builds an Adapter from feed configuration. An empty base URL
// yields a synthetic-only feed.
func NewFromConfig(cfg config.FeedConfig, logger zerolog.Logger) *Adapter {
	instruments := InstrumentsFromConfig(cfg.Symbols)

	var live LiveSource
	if cfg.BaseURL != "" {
		live = NewQuoteClient(QuoteClientOptions{
			BaseURL:        cfg.BaseURL,
			Timeout:        cfg.Timeout,
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
		}, logger)
	}

	breakerCfg := resilience.DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.Cooldown > 0 {
		breakerCfg.Timeout = cfg.Cooldown
	}
	feedLogger := logging.WithComponent(logger, "feed")
	breakerCfg.OnStateChange = func(name string, from, to resilience.CircuitState) {
		ev := feedLogger.Info()
		if to == resilience.CircuitOpen {
			ev = feedLogger.Warn().Dur("cooldown", breakerCfg.Timeout)
		}
		ev.Str("breaker", name).Str("from", string(from)).Str("to", string(to)).Msg("Live feed breaker state changed")
	}

	return NewAdapter(AdapterConfig{
		Instruments: instruments,
		Live:        live,
		Timeout:     cfg.Timeout,
		Breaker:     resilience.NewCircuitBreaker("price_feed", breakerCfg),
	}, logger)
}
