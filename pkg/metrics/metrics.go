package metrics

import (
	"runtime"
	"time"
)

// Every recorder tolerates a nil *Registry so callers can run without metrics.

// RecordHTTPRequest records a served HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncHTTPRequestsInFlight marks a request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	if r == nil {
		return
	}
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	if r == nil {
		return
	}
	r.HTTPRequestsInFlight.Dec()
}

// RecordClientRequest records one backend API call. status is the HTTP
// status code, or "error" / "unavailable" when no response was received.
func (r *Registry) RecordClientRequest(endpoint, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.ClientRequestsTotal.WithLabelValues(endpoint, status).Inc()
	r.ClientRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetBreakerState publishes the client circuit breaker state.
func (r *Registry) SetBreakerState(state int) {
	if r == nil {
		return
	}
	r.ClientBreakerState.Set(float64(state))
}

// RecordDatasetSync records a dataset hand-off. Unchanged hand-offs only bump
// the counter; full syncs also refresh the size gauges.
func (r *Registry) RecordDatasetSync(changed bool, nodes, links, dangling int) {
	if r == nil {
		return
	}
	if !changed {
		r.DatasetSyncsTotal.WithLabelValues("unchanged").Inc()
		return
	}
	r.DatasetSyncsTotal.WithLabelValues("full").Inc()
	r.DatasetNodes.Set(float64(nodes))
	r.DatasetLinks.Set(float64(links))
	r.DatasetDanglingLinks.Set(float64(dangling))
}

// RecordEncodes counts descriptors produced by a full or targeted pass.
func (r *Registry) RecordEncodes(pass string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.DescriptorEncodesTotal.WithLabelValues(pass).Add(float64(n))
}

// RecordSettingsChange counts an applied visual or physics change.
func (r *Registry) RecordSettingsChange(kind string) {
	if r == nil {
		return
	}
	r.SettingsChangesTotal.WithLabelValues(kind).Inc()
}

// RecordHighlightTransition counts a slot transition (select, expire, clear, stale).
func (r *Registry) RecordHighlightTransition(slot, transition string) {
	if r == nil {
		return
	}
	r.HighlightTransitionsTotal.WithLabelValues(slot, transition).Inc()
}

// RecordCameraMove counts a camera fly-to by trigger.
func (r *Registry) RecordCameraMove(trigger string) {
	if r == nil {
		return
	}
	r.CameraMovesTotal.WithLabelValues(trigger).Inc()
}

// RecordReheat counts a simulation reheat.
func (r *Registry) RecordReheat() {
	if r == nil {
		return
	}
	r.SimulationReheatsTotal.Inc()
}

// RecordTick counts a simulation step and publishes its temperature.
func (r *Registry) RecordTick(alpha float64) {
	if r == nil {
		return
	}
	r.SimulationTicksTotal.Inc()
	r.SimulationAlpha.Set(alpha)
}

// UpdateSystemMetrics refreshes the process gauges.
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	if r == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	r.UptimeSeconds.Set(time.Since(started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
}
