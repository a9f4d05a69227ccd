// Package monitor evaluates alerts against live prices on a timer.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/enrich"
	"market-alerts/internal/feed"
	"market-alerts/internal/logging"
	"market-alerts/internal/message"
	"market-alerts/internal/models"
	"market-alerts/internal/notify"
	"market-alerts/internal/store"
	"market-alerts/internal/stream"
)

// Publisher receives engine events for live distribution.
type Publisher interface {
	Publish(ev stream.Event)
}

// TickResult summarizes one evaluation pass.
type TickResult struct {
	Paused     bool                    `json:"paused"`
	Evaluated  int                     `json:"evaluated"`
	Missing    int                     `json:"missing"`
	Duplicates int                     `json:"duplicates"`
	Fired      []models.TriggeredAlert `json:"fired"`
	Source     models.PriceSource      `json:"source,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	Duration   time.Duration           `json:"duration"`
	Err        error                   `json:"-"`
}

// Evaluator runs a single tick: it compares every active alert against the
// latest price snapshot and fires the ones whose condition holds.
type Evaluator struct {
	store     store.AlertStore
	feed      feed.Feed
	enrich    enrich.Provider
	sink      *notify.Sink
	publisher Publisher
	notifier  notify.Notifier
	now       func() time.Time
	logger    zerolog.Logger
}

// EvaluatorConfig wires the evaluator's collaborators. Enrich, Publisher and
// Notifier are optional.
type EvaluatorConfig struct {
	Store     store.AlertStore
	Feed      feed.Feed
	Enrich    enrich.Provider
	Sink      *notify.Sink
	Publisher Publisher
	Notifier  notify.Notifier
}

// NewEvaluator creates a new evaluator.
func NewEvaluator(cfg EvaluatorConfig, logger zerolog.Logger) *Evaluator {
	if cfg.Enrich == nil {
		cfg.Enrich = enrich.Disabled{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NoOpNotifier{}
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.NewSink()
	}
	return &Evaluator{
		store:     cfg.Store,
		feed:      cfg.Feed,
		enrich:    cfg.Enrich,
		sink:      cfg.Sink,
		publisher: cfg.Publisher,
		notifier:  cfg.Notifier,
		now:       time.Now,
		logger:    logging.WithComponent(logger, "evaluator"),
	}
}

// SetClock replaces the time source. Intended for tests.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
}

// Sink returns the notification sink the evaluator appends to.
func (e *Evaluator) Sink() *notify.Sink {
	return e.sink
}

// tickContext caches enrichment for the duration of one tick.
type tickContext struct {
	provider     enrich.Provider
	sentiment    models.Optional[models.SentimentSnapshot]
	sentimentSet bool
	positioning  map[string]models.Optional[models.PositioningBias]
}

func (tc *tickContext) Sentiment(ctx context.Context) models.Optional[models.SentimentSnapshot] {
	if !tc.sentimentSet {
		tc.sentiment = tc.provider.Sentiment(ctx)
		tc.sentimentSet = true
	}
	return tc.sentiment
}

func (tc *tickContext) Positioning(ctx context.Context, symbol string) models.Optional[models.PositioningBias] {
	if p, ok := tc.positioning[symbol]; ok {
		return p
	}
	p := tc.provider.Positioning(ctx, symbol)
	tc.positioning[symbol] = p
	return p
}

// Tick evaluates every active alert once. Failures are logged and never
// stop the evaluation of other alerts.
func (e *Evaluator) Tick(ctx context.Context) (res TickResult) {
	res = TickResult{StartedAt: e.now()}
	defer func() { res.Duration = e.now().Sub(res.StartedAt) }()

	alerts, err := e.store.List(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to list alerts")
		res.Err = err
		return res
	}

	snap := e.feed.Snapshot(ctx)
	res.Source = snap.Source
	if e.publisher != nil {
		e.publisher.Publish(stream.PricesEvent(snap))
	}

	tc := &tickContext{
		provider:    e.enrich,
		positioning: make(map[string]models.Optional[models.PositioningBias]),
	}
	seen := make(map[string]bool)

	for _, alert := range alerts {
		if !alert.IsActive {
			continue
		}
		res.Evaluated++

		quote, ok := snap.Lookup(alert.Symbol)
		if !ok {
			res.Missing++
			e.logger.Debug().Str("symbol", alert.Symbol).Str("alert_id", alert.ID).Msg("No price for symbol")
			continue
		}
		if !alert.Direction.Crossed(quote.Price, alert.AlertPrice) {
			continue
		}
		if seen[alert.ID] || e.sink.Contains(alert.ID) {
			res.Duplicates++
			continue
		}
		seen[alert.ID] = true

		t := e.fire(ctx, tc, alert, quote.Price)
		if !e.sink.Append(t) {
			res.Duplicates++
			continue
		}
		e.deactivate(ctx, alert.ID)
		logging.LogAlertTriggered(e.logger, alert.ID, alert.Symbol, string(alert.Direction), alert.AlertPrice, quote.Price, t.Caution)
		res.Fired = append(res.Fired, t)
	}

	for _, t := range res.Fired {
		if e.publisher != nil {
			e.publisher.Publish(stream.AlertEvent(t))
		}
		if err := e.notifier.Notify(ctx, t); err != nil {
			log := logging.WithAlertID(e.logger, t.ID)
			log.Warn().Err(err).Msg("Outbound notification failed")
		}
	}

	return res
}

func (e *Evaluator) fire(ctx context.Context, tc *tickContext, alert models.Alert, price float64) models.TriggeredAlert {
	sentiment := tc.Sentiment(ctx)
	positioning := tc.Positioning(ctx, alert.Symbol)

	msg := message.Synthesize(message.Input{
		Symbol:      alert.Symbol,
		Price:       price,
		Label:       alert.Label,
		Direction:   alert.Direction,
		Sentiment:   sentiment,
		Positioning: positioning,
	})

	return models.TriggeredAlert{
		ID:         alert.ID,
		Symbol:     alert.Symbol,
		Label:      alert.Label,
		Direction:  alert.Direction,
		AlertPrice: alert.AlertPrice,
		Message:    msg.Text,
		Caution:    msg.Caution,
		Timestamp:  e.now(),
		Context: models.AlertContext{
			Price:       price,
			Sentiment:   sentiment,
			Positioning: positioning,
		},
	}
}

// deactivate latches a fired alert off. A failed write leaves the alert
// active in the store; the sink still suppresses a repeat fire.
func (e *Evaluator) deactivate(ctx context.Context, id string) {
	if err := e.store.SetActive(ctx, id, false); err != nil {
		log := logging.WithAlertID(e.logger, id)
		log.Error().Err(err).Msg("Failed to deactivate fired alert")
	}
}
