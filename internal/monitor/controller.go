package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/logging"
	"market-alerts/internal/stream"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 15 * time.Second

// Ticker runs one evaluation pass.
type Ticker interface {
	Tick(ctx context.Context) TickResult
}

// Status describes the controller for observability.
type Status struct {
	Running   bool          `json:"running"`
	Paused    bool          `json:"paused"`
	Interval  time.Duration `json:"interval"`
	Ticks     uint64        `json:"ticks"`
	LastTick  time.Time     `json:"last_tick"`
	LastFired int           `json:"last_fired"`
	Fired     uint64        `json:"fired"`
}

// Controller owns the polling loop. At most one loop goroutine exists and
// ticks never overlap.
type Controller struct {
	ticker    Ticker
	interval  time.Duration
	immediate bool
	publisher Publisher
	logger    zerolog.Logger

	paused atomic.Bool
	tickMu sync.Mutex

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	statsMu   sync.RWMutex
	ticks     uint64
	fired     uint64
	lastTick  time.Time
	lastFired int
}

// ControllerConfig holds controller settings.
type ControllerConfig struct {
	Interval           time.Duration
	ImmediateFirstTick bool
	StartPaused        bool
	Publisher          Publisher
}

// NewController creates a controller around t.
func NewController(t Ticker, cfg ControllerConfig, logger zerolog.Logger) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	c := &Controller{
		ticker:    t,
		interval:  cfg.Interval,
		immediate: cfg.ImmediateFirstTick,
		publisher: cfg.Publisher,
		logger:    logging.WithComponent(logger, "controller"),
	}
	c.paused.Store(cfg.StartPaused)
	return c
}

// Start launches the polling loop. Calling Start while running is a no-op.
// A loop that exited because its parent context ended is replaced.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.aliveLocked() {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	c.logger.Info().Dur("interval", c.interval).Bool("paused", c.Paused()).Msg("Monitoring started")
	go c.loop(loopCtx, c.done)
}

func (c *Controller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if c.immediate {
		c.TickNow(ctx)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.TickNow(ctx)
		}
	}
}

// Stop cancels the loop and waits until it exits, including any tick in
// flight. Stop on a stopped controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.cancel()
	<-c.done
	c.running = false
	c.cancel = nil
	c.done = nil

	c.logger.Info().Msg("Monitoring stopped")
}

// Running reports whether the loop goroutine is alive.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aliveLocked()
}

func (c *Controller) aliveLocked() bool {
	if !c.running {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Pause makes subsequent ticks no-ops.
func (c *Controller) Pause() {
	c.SetPaused(true)
}

// Resume re-enables evaluation.
func (c *Controller) Resume() {
	c.SetPaused(false)
}

// SetPaused sets the pause flag.
func (c *Controller) SetPaused(paused bool) {
	if c.paused.Swap(paused) == paused {
		return
	}
	c.logger.Info().Bool("paused", paused).Msg("Monitoring state changed")
	if c.publisher != nil {
		c.publisher.Publish(stream.MonitoringEvent(paused))
	}
}

// Paused reports whether monitoring is paused.
func (c *Controller) Paused() bool {
	return c.paused.Load()
}

// TickNow runs one tick immediately, serialized with the loop's ticks.
// A paused controller skips the tick.
func (c *Controller) TickNow(ctx context.Context) TickResult {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	if c.Paused() {
		return TickResult{Paused: true, StartedAt: time.Now()}
	}
	if ctx.Err() != nil {
		return TickResult{StartedAt: time.Now(), Err: ctx.Err()}
	}

	res := c.ticker.Tick(ctx)

	c.statsMu.Lock()
	c.ticks++
	c.fired += uint64(len(res.Fired))
	c.lastTick = res.StartedAt
	c.lastFired = len(res.Fired)
	c.statsMu.Unlock()

	log := logging.WithOperation(c.logger, "tick")
	log.Debug().
		Int("evaluated", res.Evaluated).
		Int("fired", len(res.Fired)).
		Int("missing", res.Missing).
		Str("source", string(res.Source)).
		Dur("duration", res.Duration).
		Msg("Tick complete")

	return res
}

// Status returns the controller status.
func (c *Controller) Status() Status {
	running := c.Running()

	c.statsMu.RLock()
	defer c.statsMu.RUnlock()

	return Status{
		Running:   running,
		Paused:    c.Paused(),
		Interval:  c.interval,
		Ticks:     c.ticks,
		LastTick:  c.lastTick,
		LastFired: c.lastFired,
		Fired:     c.fired,
	}
}
