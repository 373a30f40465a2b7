package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker()

	if hc == nil {
		t.Fatal("NewHealthChecker returned nil")
	}
	if hc.checks == nil {
		t.Error("checks map not initialized")
	}
	if hc.readyChecks == nil {
		t.Error("readyChecks map not initialized")
	}
	if hc.liveChecks == nil {
		t.Error("liveChecks map not initialized")
	}
}

func TestRegisterCheck(t *testing.T) {
	hc := NewHealthChecker()

	called := false
	hc.RegisterCheck("test", func() Check {
		called = true
		return Check{Status: StatusHealthy}
	})

	resp := hc.Check()
	if !called {
		t.Error("registered check was not called")
	}
	if _, exists := resp.Checks["test"]; !exists {
		t.Error("check result not in response")
	}
}

func TestRegisterReadinessCheck(t *testing.T) {
	hc := NewHealthChecker()

	called := false
	hc.RegisterReadinessCheck("ready-test", func() Check {
		called = true
		return Check{Status: StatusHealthy}
	})

	// Should not be called for regular Check()
	hc.Check()
	if called {
		t.Error("readiness check should not be called for Check()")
	}

	// Should be called for CheckReadiness()
	resp := hc.CheckReadiness()
	if !called {
		t.Error("readiness check was not called")
	}
	if _, exists := resp.Checks["ready-test"]; !exists {
		t.Error("readiness check result not in response")
	}
}

func TestRegisterLivenessCheck(t *testing.T) {
	hc := NewHealthChecker()

	called := false
	hc.RegisterLivenessCheck("live-test", func() Check {
		called = true
		return Check{Status: StatusHealthy}
	})

	// Should not be called for regular Check()
	hc.Check()
	if called {
		t.Error("liveness check should not be called for Check()")
	}

	// Should be called for CheckLiveness()
	resp := hc.CheckLiveness()
	if !called {
		t.Error("liveness check was not called")
	}
	if _, exists := resp.Checks["live-test"]; !exists {
		t.Error("liveness check result not in response")
	}
}

func TestCheckStatusAggregation(t *testing.T) {
	tests := []struct {
		name           string
		checkStatuses  []Status
		expectedStatus Status
	}{
		{
			name:           "all healthy",
			checkStatuses:  []Status{StatusHealthy, StatusHealthy, StatusHealthy},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "one degraded",
			checkStatuses:  []Status{StatusHealthy, StatusDegraded, StatusHealthy},
			expectedStatus: StatusDegraded,
		},
		{
			name:           "one unhealthy",
			checkStatuses:  []Status{StatusHealthy, StatusUnhealthy, StatusHealthy},
			expectedStatus: StatusUnhealthy,
		},
		{
			name:           "degraded and unhealthy",
			checkStatuses:  []Status{StatusDegraded, StatusUnhealthy, StatusHealthy},
			expectedStatus: StatusUnhealthy,
		},
		{
			name:           "no checks",
			checkStatuses:  []Status{},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "single healthy",
			checkStatuses:  []Status{StatusHealthy},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "single unhealthy",
			checkStatuses:  []Status{StatusUnhealthy},
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()

			for i, status := range tt.checkStatuses {
				s := status // capture
				hc.RegisterCheck(string(rune('a'+i)), func() Check {
					return Check{Status: s}
				})
			}

			resp := hc.Check()
			if resp.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, resp.Status)
			}
		})
	}
}

func TestCheckTimestamp(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("test", func() Check {
		return Check{Status: StatusHealthy}
	})

	before := time.Now()
	resp := hc.Check()
	after := time.Now()

	if resp.Timestamp.Before(before) || resp.Timestamp.After(after) {
		t.Errorf("timestamp %v not between %v and %v", resp.Timestamp, before, after)
	}
}

func TestCheckDuration(t *testing.T) {
	hc := NewHealthChecker()

	sleepDuration := 10 * time.Millisecond
	hc.RegisterCheck("slow", func() Check {
		time.Sleep(sleepDuration)
		return Check{Status: StatusHealthy}
	})

	resp := hc.Check()
	check := resp.Checks["slow"]

	if check.Duration < sleepDuration {
		t.Errorf("duration %v less than sleep time %v", check.Duration, sleepDuration)
	}
}

func TestSimpleCheck(t *testing.T) {
	check := SimpleCheck("test-component")

	if check.Name != "test-component" {
		t.Errorf("expected name 'test-component', got %s", check.Name)
	}
	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
	if check.LastChecked.IsZero() {
		t.Error("LastChecked not set")
	}
}

func TestBackendCheck(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		breakerOpen    bool
		expectedStatus Status
		expectedMsg    string
		expectPing     bool
	}{
		{
			name:           "reachable",
			expectedStatus: StatusHealthy,
			expectedMsg:    "Reachable",
			expectPing:     true,
		},
		{
			name:           "ping fails",
			pingErr:        errors.New("connection refused"),
			expectedStatus: StatusUnhealthy,
			expectedMsg:    "connection refused",
			expectPing:     true,
		},
		{
			name:           "breaker open",
			breakerOpen:    true,
			expectedStatus: StatusUnhealthy,
			expectedMsg:    "Circuit breaker open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinged := false
			checkFunc := BackendCheck(func(ctx context.Context) error {
				pinged = true
				if _, ok := ctx.Deadline(); !ok {
					t.Error("ping context has no deadline")
				}
				return tt.pingErr
			}, func() bool { return tt.breakerOpen }, time.Second)

			check := checkFunc()

			if check.Name != "backend" {
				t.Errorf("expected name 'backend', got %s", check.Name)
			}
			if check.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, check.Status)
			}
			if check.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, check.Message)
			}
			if pinged != tt.expectPing {
				t.Errorf("expected ping=%v, got %v", tt.expectPing, pinged)
			}
			if check.Details["breaker_open"] != tt.breakerOpen {
				t.Errorf("expected breaker_open=%v, got %v", tt.breakerOpen, check.Details["breaker_open"])
			}
		})
	}
}

func TestBackendCheckNilBreaker(t *testing.T) {
	check := BackendCheck(func(context.Context) error { return nil }, nil, 0)()
	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
}

func TestSimulationCheck(t *testing.T) {
	tests := []struct {
		name           string
		state          SimulationState
		expectedStatus Status
		expectedMsg    string
	}{
		{
			name:           "running",
			state:          SimulationState{Alpha: 0.5, Nodes: 10, Links: 12},
			expectedStatus: StatusHealthy,
			expectedMsg:    "Layout running",
		},
		{
			name:           "settled",
			state:          SimulationState{Alpha: 0.0009, Settled: true, Nodes: 10, Links: 12, Dangling: 2},
			expectedStatus: StatusHealthy,
			expectedMsg:    "Layout settled",
		},
		{
			name:           "half dangling",
			state:          SimulationState{Alpha: 0.2, Links: 10, Dangling: 5},
			expectedStatus: StatusHealthy,
			expectedMsg:    "Layout running",
		},
		{
			name:           "mostly dangling",
			state:          SimulationState{Alpha: 0.2, Links: 20, Dangling: 17},
			expectedStatus: StatusDegraded,
			expectedMsg:    "Most links reference missing nodes",
		},
		{
			name:           "alpha out of range",
			state:          SimulationState{Alpha: 2},
			expectedStatus: StatusUnhealthy,
			expectedMsg:    "Simulation temperature out of range",
		},
		{
			name:           "empty graph",
			state:          SimulationState{Alpha: 1},
			expectedStatus: StatusHealthy,
			expectedMsg:    "Layout running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := SimulationCheck(func() SimulationState { return tt.state })()

			if check.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, check.Status)
			}
			if check.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, check.Message)
			}
			if check.Details["dangling_links"] != tt.state.Dangling {
				t.Errorf("expected dangling_links %d, got %v", tt.state.Dangling, check.Details["dangling_links"])
			}
		})
	}
}

func TestCheckNameDefaultsToRegistration(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("anon", func() Check { return Check{Status: StatusHealthy} })

	resp := hc.Check()
	if resp.Checks["anon"].Name != "anon" {
		t.Errorf("expected name 'anon', got %q", resp.Checks["anon"].Name)
	}
}

func TestUptime(t *testing.T) {
	hc := NewHealthChecker()
	start := hc.started
	hc.now = func() time.Time { return start.Add(90 * time.Second) }

	resp := hc.Check()
	if resp.Uptime != 90 {
		t.Errorf("expected uptime 90, got %v", resp.Uptime)
	}
}

func TestMemoryCheck(t *testing.T) {
	tests := []struct {
		name           string
		alloc          uint64
		sys            uint64
		expectedStatus Status
		expectedMsg    string
	}{
		{
			name:           "normal usage",
			alloc:          50,
			sys:            100,
			expectedStatus: StatusHealthy,
			expectedMsg:    "Memory usage normal",
		},
		{
			name:           "high usage (90%)",
			alloc:          90,
			sys:            100,
			expectedStatus: StatusHealthy,
			expectedMsg:    "Memory usage normal",
		},
		{
			name:           "high usage (91%)",
			alloc:          91,
			sys:            100,
			expectedStatus: StatusDegraded,
			expectedMsg:    "High memory usage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkFunc := MemoryCheck(func() (uint64, uint64) {
				return tt.alloc, tt.sys
			})

			check := checkFunc()

			if check.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, check.Status)
			}
			if check.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, check.Message)
			}
		})
	}
}

func TestHTTPHandler(t *testing.T) {
	tests := []struct {
		name           string
		checkStatus    Status
		expectedCode   int
	}{
		{
			name:           "healthy returns 200",
			checkStatus:    StatusHealthy,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "degraded returns 200",
			checkStatus:    StatusDegraded,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "unhealthy returns 503",
			checkStatus:    StatusUnhealthy,
			expectedCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.RegisterCheck("test", func() Check {
				return Check{Status: tt.checkStatus}
			})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			hc.HTTPHandler()(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status code %d, got %d", tt.expectedCode, rec.Code)
			}

			if rec.Header().Get("Content-Type") != "application/json" {
				t.Error("expected Content-Type application/json")
			}

			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Status != tt.checkStatus {
				t.Errorf("expected response status %s, got %s", tt.checkStatus, resp.Status)
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		checkStatus    Status
		expectedCode   int
	}{
		{
			name:           "healthy returns 200",
			checkStatus:    StatusHealthy,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "degraded returns 503",
			checkStatus:    StatusDegraded,
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "unhealthy returns 503",
			checkStatus:    StatusUnhealthy,
			expectedCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.RegisterReadinessCheck("test", func() Check {
				return Check{Status: tt.checkStatus}
			})

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()

			hc.ReadinessHandler()(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status code %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	tests := []struct {
		name           string
		checkStatus    Status
		expectedCode   int
	}{
		{
			name:           "healthy returns 200",
			checkStatus:    StatusHealthy,
			expectedCode:   http.StatusOK,
		},
		{
			name:           "degraded returns 503",
			checkStatus:    StatusDegraded,
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "unhealthy returns 503",
			checkStatus:    StatusUnhealthy,
			expectedCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.RegisterLivenessCheck("test", func() Check {
				return Check{Status: tt.checkStatus}
			})

			req := httptest.NewRequest(http.MethodGet, "/live", nil)
			rec := httptest.NewRecorder()

			hc.LivenessHandler()(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status code %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}

func TestConcurrentCheckRegistration(t *testing.T) {
	hc := NewHealthChecker()

	// Register checks concurrently
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			hc.RegisterCheck(string(rune('a'+id)), func() Check {
				return Check{Status: StatusHealthy}
			})
			done <- true
		}(i)
	}

	// Wait for all registrations
	for i := 0; i < 10; i++ {
		<-done
	}

	// Run checks concurrently
	for i := 0; i < 10; i++ {
		go func() {
			hc.Check()
			done <- true
		}()
	}

	// Wait for all checks
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify all checks registered
	resp := hc.Check()
	if len(resp.Checks) != 10 {
		t.Errorf("expected 10 checks, got %d", len(resp.Checks))
	}
}

func TestResponseJSONSerialization(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("test", func() Check {
		return Check{
			Status:  StatusHealthy,
			Message: "All good",
			Details: map[string]any{
				"version": "1.0.0",
				"count":   42,
			},
		}
	})

	resp := hc.Check()

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if decoded.Status != resp.Status {
		t.Errorf("status mismatch: expected %s, got %s", resp.Status, decoded.Status)
	}

	check, exists := decoded.Checks["test"]
	if !exists {
		t.Fatal("check 'test' not found in decoded response")
	}

	if check.Message != "All good" {
		t.Errorf("message mismatch: expected 'All good', got %s", check.Message)
	}
}
