package resilience

import (
	"context"
	"errors"
	"testing"
)

func TestHealthCheckerWorstStatusWins(t *testing.T) {
	h := NewHealthChecker(0)
	h.Register("store", DatabaseHealthCheck(func(context.Context) error { return nil }))
	h.Register("monitoring", LoopHealthCheck(func() bool { return true }, func() bool { return true }))

	got := h.Check(context.Background())
	if got.Status != HealthStatusDegraded || !got.Operational() {
		t.Errorf("status = %s, want DEGRADED and operational", got.Status)
	}
	if len(got.Components) != 2 || got.Components[0].Name != "store" || got.Components[1].Name != "monitoring" {
		t.Errorf("components = %+v", got.Components)
	}

	h.Register("db2", DatabaseHealthCheck(func(context.Context) error { return errors.New("refused") }))
	if got := h.Check(context.Background()); got.Status != HealthStatusUnhealthy || got.Operational() {
		t.Errorf("status = %s, want UNHEALTHY", got.Status)
	}
}

func TestHealthCheckerRecoversPanics(t *testing.T) {
	h := NewHealthChecker(0)
	h.Register("broken", func(context.Context) ComponentHealth { panic("boom") })

	got := h.Check(context.Background())
	if got.Status != HealthStatusUnhealthy || got.Components[0].Name != "broken" {
		t.Errorf("health = %+v", got)
	}
}

func TestBreakerHealthCheck(t *testing.T) {
	cb := NewCircuitBreaker("price_feed", CircuitBreakerConfig{FailureThreshold: 1})
	check := BreakerHealthCheck(func() *CircuitBreakerStats {
		s := cb.Stats()
		return &s
	}, "serving synthetic prices")

	if got := check(context.Background()); got.Status != HealthStatusHealthy {
		t.Errorf("closed breaker = %s", got.Status)
	}

	cb.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	got := check(context.Background())
	if got.Status != HealthStatusDegraded || got.Details["state"] != CircuitOpen {
		t.Errorf("open breaker = %+v", got)
	}

	unset := BreakerHealthCheck(func() *CircuitBreakerStats { return nil }, "synthetic")
	if got := unset(context.Background()); got.Status != HealthStatusHealthy {
		t.Errorf("unconfigured = %s", got.Status)
	}
}
