package endpoint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/server/endpoint"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func checker(status observability.HealthStatus) observability.HealthChecker {
	return observability.HealthCheckFunc(func(context.Context) observability.Health {
		return observability.Health{Name: "engine.whisper", Status: status}
	})
}

func serve(t *testing.T, path string, h gin.HandlerFunc) (int, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	r.GET(path, h)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rr.Code, body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []observability.HealthChecker
		wantCode   int
		wantStatus string
	}{
		{"no checkers", nil, http.StatusOK, "up"},
		{"all up", []observability.HealthChecker{checker(observability.HealthStatusUp)}, http.StatusOK, "up"},
		{"degraded", []observability.HealthChecker{
			checker(observability.HealthStatusUp),
			checker(observability.HealthStatusDegraded),
		}, http.StatusOK, "degraded"},
		{"down", []observability.HealthChecker{
			checker(observability.HealthStatusDegraded),
			checker(observability.HealthStatusDown),
		}, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, "/health", endpoint.Health("scribed", tt.checkers...))
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], tt.wantStatus)
			}
			if body["service"] != "scribed" {
				t.Errorf("service = %v", body["service"])
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	code, body := serve(t, "/ready", endpoint.Readiness("scribed", checker(observability.HealthStatusDegraded)))
	if code != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("degraded: code=%d body=%v", code, body)
	}

	code, body = serve(t, "/ready", endpoint.Readiness("scribed", checker(observability.HealthStatusDown)))
	if code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Fatalf("down: code=%d body=%v", code, body)
	}
	down, ok := body["down"].([]interface{})
	if !ok || len(down) != 1 {
		t.Errorf("expected one down component, got %v", body["down"])
	}
}

func TestLivenessAndVersion(t *testing.T) {
	code, body := serve(t, "/alive", endpoint.Liveness("scribed"))
	if code != http.StatusOK || body["status"] != "alive" {
		t.Fatalf("liveness: code=%d body=%v", code, body)
	}
	if _, ok := body["uptime_seconds"]; !ok {
		t.Errorf("liveness missing uptime: %v", body)
	}

	code, body = serve(t, "/version", endpoint.Version("scribed"))
	if code != http.StatusOK {
		t.Fatalf("version: code=%d", code)
	}
	for _, key := range []string{"service", "version", "go_version", "uptime"} {
		if _, ok := body[key]; !ok {
			t.Errorf("version response missing %q: %v", key, body)
		}
	}
}

type gate struct{ inUse, waiting, capacity int }

func (g gate) InUse() int    { return g.inUse }
func (g gate) Waiting() int  { return g.waiting }
func (g gate) Capacity() int { return g.capacity }

func TestMetrics(t *testing.T) {
	code, body := serve(t, "/metrics", endpoint.Metrics(nil))
	if code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if _, ok := body["goroutines"]; !ok {
		t.Errorf("missing goroutines: %v", body)
	}
	if _, ok := body["memory"].(map[string]interface{}); !ok {
		t.Errorf("missing memory block: %v", body)
	}
	if _, ok := body["jobs"]; ok {
		t.Errorf("unexpected jobs block without stats: %v", body)
	}

	_, body = serve(t, "/metrics", endpoint.Metrics(gate{inUse: 2, waiting: 3, capacity: 2}))
	jobs, ok := body["jobs"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing jobs block: %v", body)
	}
	// JSON numbers decode as float64.
	if jobs["active"] != 2.0 || jobs["queued"] != 3.0 || jobs["capacity"] != 2.0 {
		t.Errorf("unexpected jobs block %v", jobs)
	}
}
