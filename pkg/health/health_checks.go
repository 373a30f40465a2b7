package health

import (
	"context"
	"runtime"
	"time"
)

// Thresholds used by the built-in checks.
const (
	DefaultBackendTimeout = 2 * time.Second

	// danglingDegradedRatio is the share of dangling links above which the
	// dataset check reports degraded.
	danglingDegradedRatio = 0.5
)

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// BackendCheck pings the graph backend. An open breaker reports unhealthy
// without a request.
func BackendCheck(ping func(ctx context.Context) error, breakerOpen func() bool, timeout time.Duration) CheckFunc {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return func() Check {
		check := Check{
			Name:    "backend",
			Details: make(map[string]any),
		}

		open := breakerOpen != nil && breakerOpen()
		check.Details["breaker_open"] = open
		if open {
			check.Status = StatusUnhealthy
			check.Message = "Circuit breaker open"
			return check
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Reachable"
		}

		return check
	}
}

// SimulationState is what the simulation check inspects.
type SimulationState struct {
	Alpha    float64
	Ticks    uint64
	Settled  bool
	Nodes    int
	Links    int
	Dangling int
}

// SimulationCheck reports the layout simulation. A graph where most links
// reference missing nodes is degraded; a non-finite alpha is unhealthy.
func SimulationCheck(getState func() SimulationState) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "simulation",
			Details: make(map[string]any),
		}

		st := getState()
		check.Details["alpha"] = st.Alpha
		check.Details["ticks"] = st.Ticks
		check.Details["settled"] = st.Settled
		check.Details["nodes"] = st.Nodes
		check.Details["links"] = st.Links
		check.Details["dangling_links"] = st.Dangling

		switch {
		case st.Alpha != st.Alpha || st.Alpha < 0 || st.Alpha > 1:
			check.Status = StatusUnhealthy
			check.Message = "Simulation temperature out of range"
		case st.Links > 0 && float64(st.Dangling)/float64(st.Links) > danglingDegradedRatio:
			check.Status = StatusDegraded
			check.Message = "Most links reference missing nodes"
		case st.Settled:
			check.Status = StatusHealthy
			check.Message = "Layout settled"
		default:
			check.Status = StatusHealthy
			check.Message = "Layout running"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	if getUsage == nil {
		getUsage = runtimeMemory
	}
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := 0.0
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

func runtimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
