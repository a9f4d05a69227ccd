package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"market-alerts/internal/models"
	"market-alerts/internal/stream"
)

// slowTicker records concurrent entries to detect overlapping ticks.
type slowTicker struct {
	delay   time.Duration
	calls   int64
	active  int64
	overlap int64
}

func (s *slowTicker) Tick(ctx context.Context) TickResult {
	if atomic.AddInt64(&s.active, 1) > 1 {
		atomic.StoreInt64(&s.overlap, 1)
	}
	defer atomic.AddInt64(&s.active, -1)
	atomic.AddInt64(&s.calls, 1)
	time.Sleep(s.delay)
	return TickResult{StartedAt: time.Now(), Fired: []models.TriggeredAlert{{ID: "x"}}}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestControllerImmediateTickAndInterval(t *testing.T) {
	tk := &slowTicker{}
	c := NewController(tk, ControllerConfig{Interval: 20 * time.Millisecond, ImmediateFirstTick: true}, zerolog.Nop())

	c.Start(context.Background())
	defer c.Stop()

	waitFor(t, func() bool { return atomic.LoadInt64(&tk.calls) >= 3 })
	if !c.Running() {
		t.Error("controller should be running")
	}
	st := c.Status()
	if st.Ticks < 3 || st.Fired < 3 || st.LastFired != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestControllerStartIsIdempotent(t *testing.T) {
	tk := &slowTicker{delay: 5 * time.Millisecond}
	c := NewController(tk, ControllerConfig{Interval: 5 * time.Millisecond}, zerolog.Nop())
	ctx := context.Background()

	c.Start(ctx)
	c.Start(ctx)
	c.Start(ctx)
	waitFor(t, func() bool { return atomic.LoadInt64(&tk.calls) >= 5 })
	c.Stop()

	if atomic.LoadInt64(&tk.overlap) != 0 {
		t.Error("ticks overlapped")
	}
}

func TestControllerStopWaitsAndRestarts(t *testing.T) {
	tk := &slowTicker{delay: 10 * time.Millisecond}
	c := NewController(tk, ControllerConfig{Interval: 2 * time.Millisecond, ImmediateFirstTick: true}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Start(ctx)
		time.Sleep(15 * time.Millisecond)
		c.Stop()
		if c.Running() {
			t.Fatal("Stop returned while still running")
		}
		if atomic.LoadInt64(&tk.active) != 0 {
			t.Fatal("tick in flight after Stop returned")
		}
	}

	before := atomic.LoadInt64(&tk.calls)
	time.Sleep(20 * time.Millisecond)
	if after := atomic.LoadInt64(&tk.calls); after != before {
		t.Errorf("ticks continued after stop: %d -> %d", before, after)
	}
	if atomic.LoadInt64(&tk.overlap) != 0 {
		t.Error("ticks overlapped across restarts")
	}
	c.Stop() // no-op
}

func TestControllerParentCancelEndsLoop(t *testing.T) {
	tk := &slowTicker{}
	c := NewController(tk, ControllerConfig{Interval: 2 * time.Millisecond}, zerolog.Nop())

	parent, cancel := context.WithCancel(context.Background())
	c.Start(parent)
	waitFor(t, func() bool { return atomic.LoadInt64(&tk.calls) > 0 })
	cancel()
	waitFor(t, func() bool { return !c.Running() })

	c.Start(context.Background())
	defer c.Stop()
	if !c.Running() {
		t.Fatal("Start after the parent context ended did not relaunch the loop")
	}
	before := atomic.LoadInt64(&tk.calls)
	waitFor(t, func() bool { return atomic.LoadInt64(&tk.calls) > before })
}

func TestControllerPause(t *testing.T) {
	tk := &slowTicker{}
	pub := &recordingPublisher{}
	c := NewController(tk, ControllerConfig{Interval: time.Hour, StartPaused: true, Publisher: pub}, zerolog.Nop())
	ctx := context.Background()

	if res := c.TickNow(ctx); !res.Paused {
		t.Error("paused controller should skip the tick")
	}
	if atomic.LoadInt64(&tk.calls) != 0 {
		t.Error("evaluator called while paused")
	}

	c.Resume()
	if c.Paused() {
		t.Error("Resume did not clear pause")
	}
	c.TickNow(ctx)
	if atomic.LoadInt64(&tk.calls) != 1 {
		t.Error("evaluator not called after resume")
	}

	c.Pause()
	c.Pause()
	c.SetPaused(false)
	if n := pub.count(stream.EventMonitoring); n != 3 {
		t.Errorf("monitoring events = %d, want 3 state changes", n)
	}
}

func TestControllerTickNowSerialized(t *testing.T) {
	tk := &slowTicker{delay: 5 * time.Millisecond}
	c := NewController(tk, ControllerConfig{}, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TickNow(context.Background())
		}()
	}
	wg.Wait()

	if atomic.LoadInt64(&tk.overlap) != 0 {
		t.Error("concurrent TickNow calls overlapped")
	}
	if c.Status().Interval != DefaultInterval {
		t.Errorf("interval = %v, want default", c.Status().Interval)
	}
}

func TestControllerWithEvaluator(t *testing.T) {
	h := newHarness(t)
	alert := h.create(t, "GBPUSD", 1.2650, models.DirectionBelow, "Key Level")
	h.feed.set("GBPUSD", 1.2600)

	c := NewController(h.eval, ControllerConfig{Interval: 10 * time.Millisecond, ImmediateFirstTick: true}, zerolog.Nop())
	c.Start(context.Background())
	waitFor(t, func() bool { return h.eval.Sink().Contains(alert.ID) })
	waitFor(t, func() bool { return c.Status().Ticks >= 3 })
	c.Stop()

	if n := h.eval.Sink().Len(); n != 1 {
		t.Errorf("sink len = %d, want exactly one fire", n)
	}
}
