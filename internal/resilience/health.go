package resilience

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"
)

func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusHealthy:
		return 0
	case HealthStatusDegraded:
		return 1
	default:
		return 2
	}
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name      string                 `json:"name"`
	Status    HealthStatus           `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LastCheck time.Time              `json:"last_check"`
	Latency   time.Duration          `json:"latency"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthCheck represents a health check function.
type HealthCheck func(ctx context.Context) ComponentHealth

type namedCheck struct {
	name  string
	check HealthCheck
}

// HealthChecker runs registered checks on demand. The overall status is the
// worst component status.
type HealthChecker struct {
	mu        sync.RWMutex
	checks    []namedCheck
	startTime time.Time
	timeout   time.Duration
}

// NewHealthChecker creates a checker whose checks share a per-call timeout.
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{startTime: time.Now(), timeout: timeout}
}

// Register adds a named component check. Checks run in registration order.
func (h *HealthChecker) Register(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// Check runs every check and aggregates the result. A panicking check is
// reported as unhealthy.
func (h *HealthChecker) Check(ctx context.Context) SystemHealth {
	h.mu.RLock()
	checks := make([]namedCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	health := SystemHealth{
		Status:     HealthStatusHealthy,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Components: make([]ComponentHealth, 0, len(checks)),
	}
	for _, nc := range checks {
		c := runCheck(ctx, nc)
		if c.Status.rank() > health.Status.rank() {
			health.Status = c.Status
		}
		health.Components = append(health.Components, c)
	}
	return health
}

func runCheck(ctx context.Context, nc namedCheck) (c ComponentHealth) {
	defer func() {
		if r := recover(); r != nil {
			c = ComponentHealth{
				Name:      nc.name,
				Status:    HealthStatusUnhealthy,
				Message:   fmt.Sprintf("check panicked: %v", r),
				LastCheck: time.Now(),
			}
		}
	}()
	c = nc.check(ctx)
	c.Name = nc.name
	if c.LastCheck.IsZero() {
		c.LastCheck = time.Now()
	}
	return c
}

// SystemHealth represents overall system health.
type SystemHealth struct {
	Status     HealthStatus      `json:"status"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Components []ComponentHealth `json:"components"`
}

// Operational reports whether the system can still serve requests.
func (h SystemHealth) Operational() bool {
	return h.Status != HealthStatusUnhealthy
}

// DatabaseHealthCheck creates a health check for database connections.
func DatabaseHealthCheck(ping func(ctx context.Context) error) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		health := ComponentHealth{LastCheck: time.Now()}

		start := time.Now()
		err := ping(ctx)
		health.Latency = time.Since(start)

		if err != nil {
			health.Status = HealthStatusUnhealthy
			health.Message = fmt.Sprintf("Database ping failed: %v", err)
			return health
		}

		if health.Latency > 100*time.Millisecond {
			health.Status = HealthStatusDegraded
			health.Message = fmt.Sprintf("Database slow: %v", health.Latency)
			return health
		}

		health.Status = HealthStatusHealthy
		return health
	}
}

// BreakerHealthCheck reports a circuit-breaker guarded dependency. An open
// breaker is degraded, not unhealthy, when the caller serves a fallback.
// A nil stats result means the dependency is not configured.
func BreakerHealthCheck(stats func() *CircuitBreakerStats, fallback string) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		health := ComponentHealth{LastCheck: time.Now(), Status: HealthStatusHealthy}

		s := stats()
		if s == nil {
			health.Message = "not configured; " + fallback
			return health
		}
		health.Details = map[string]interface{}{
			"state":        s.State,
			"failure_rate": s.FailureRate(),
			"rejected":     s.TotalRejected,
		}

		switch s.State {
		case CircuitOpen:
			health.Status = HealthStatusDegraded
			health.Message = "circuit open; " + fallback
		case CircuitHalfOpen:
			health.Status = HealthStatusDegraded
			health.Message = "probing after failures"
		}
		return health
	}
}

// LoopHealthCheck reports a background loop. A stopped loop is unhealthy,
// a paused one degraded.
func LoopHealthCheck(running, paused func() bool) HealthCheck {
	return func(ctx context.Context) ComponentHealth {
		health := ComponentHealth{LastCheck: time.Now()}
		switch {
		case !running():
			health.Status = HealthStatusUnhealthy
			health.Message = "loop not running"
		case paused():
			health.Status = HealthStatusDegraded
			health.Message = "paused"
		default:
			health.Status = HealthStatusHealthy
		}
		return health
	}
}
