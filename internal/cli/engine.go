package cli

import (
	"context"

	"market-alerts/internal/api"
	"market-alerts/internal/coach"
	"market-alerts/internal/enrich"
	"market-alerts/internal/feed"
	"market-alerts/internal/monitor"
	"market-alerts/internal/notify"
	"market-alerts/internal/store"
	"market-alerts/internal/stream"
)

// Engine is the fully wired alert engine.
type Engine struct {
	Store      *store.SQLStore
	Feed       *feed.Adapter
	Enrich     enrich.Provider
	Sink       *notify.Sink
	Hub        *stream.Hub
	Notifier   *notify.MultiNotifier
	Evaluator  *monitor.Evaluator
	Controller *monitor.Controller
	Coach      *coach.Coach
}

// buildEngine wires every component from the loaded configuration. The hub
// is created but not started.
func (app *App) buildEngine(ctx context.Context) (*Engine, error) {
	st, err := app.Store(ctx)
	if err != nil {
		return nil, err
	}

	cfg := app.Config
	e := &Engine{
		Store:    st,
		Feed:     feed.NewFromConfig(cfg.Feed, app.Logger),
		Enrich:   enrich.NewFromConfig(cfg.Enrich, app.Logger),
		Sink:     notify.NewSink(),
		Hub:      stream.NewHub(),
		Notifier: notify.NewMultiNotifier(cfg.Notifications, app.Logger),
		Coach:    coach.NewFromConfig(cfg, app.Logger),
	}

	e.Evaluator = monitor.NewEvaluator(monitor.EvaluatorConfig{
		Store:     e.Store,
		Feed:      e.Feed,
		Enrich:    e.Enrich,
		Sink:      e.Sink,
		Publisher: e.Hub,
		Notifier:  e.Notifier,
	}, app.Logger)

	e.Controller = monitor.NewController(e.Evaluator, monitor.ControllerConfig{
		Interval:           cfg.Monitor.Interval,
		ImmediateFirstTick: cfg.Monitor.ImmediateFirstTick,
		StartPaused:        cfg.Monitor.StartPaused,
		Publisher:          e.Hub,
	}, app.Logger)

	app.Logger.Info().
		Int("symbols", len(cfg.Feed.Symbols)).
		Strs("channels", e.Notifier.Channels()).
		Bool("coach", e.Coach.Available()).
		Dur("interval", cfg.Monitor.Interval).
		Msg("Engine initialized")

	return e, nil
}

// Server returns the HTTP front end for the engine.
func (e *Engine) Server(app *App) *api.Server {
	return api.NewServer(api.Deps{
		Store:      e.Store,
		Sink:       e.Sink,
		Controller: e.Controller,
		Feed:       e.Feed,
		Hub:        e.Hub,
		Coach:      e.Coach,
	}, app.Logger)
}
