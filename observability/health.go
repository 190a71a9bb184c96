package observability

import (
	"context"
	"sync"
	"time"
)

// HealthStatus is the state of a component or of the whole service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

var severity = map[HealthStatus]int{
	HealthStatusUp:       0,
	HealthStatusDegraded: 1,
	HealthStatusDown:     2,
}

// Health is one component's check result.
type Health struct {
	Name      string            `json:"name"`
	Status    HealthStatus      `json:"status"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	LatencyMs int64             `json:"latency_ms"`
}

// ServiceHealth is the service status, the worst of its components.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker reports the health of one component.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) Health

func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// AvailabilityCheck is up while available returns true and degraded
// otherwise. A missing tool only affects some job sources, so it never
// takes the service down.
func AvailabilityCheck(name string, available func(context.Context) bool) HealthChecker {
	return HealthCheckFunc(func(ctx context.Context) Health {
		if available(ctx) {
			return Health{Name: name, Status: HealthStatusUp}
		}
		return Health{Name: name, Status: HealthStatusDegraded, Message: name + " is not available"}
	})
}

// NewServiceHealth starts an aggregate in the up state.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
}

// CheckAll runs the checkers concurrently and aggregates their results in
// checker order. Each result records how long its check took.
func CheckAll(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	results := make([]Health, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Go(func() {
			start := time.Now()
			h := c.CheckHealth(ctx)
			h.LatencyMs = time.Since(start).Milliseconds()
			results[i] = h
		})
	}
	wg.Wait()

	sh := NewServiceHealth(service, version)
	for _, h := range results {
		sh.AddComponent(h)
	}
	return sh
}

// AddComponent appends h and lowers the service status to h's if worse.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if severity[h.Status] > severity[sh.Status] {
		sh.Status = h.Status
	}
}
