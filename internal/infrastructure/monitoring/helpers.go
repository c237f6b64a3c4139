package monitoring

import "time"

// Snapshot returns a copy of the tracked values
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Uptime returns the time since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Stats returns the snapshot in a JSON-friendly form
func (m *Metrics) Stats() map[string]interface{} {
	s := m.Snapshot()

	avgRunMs := 0.0
	if s.TotalRuns > 0 {
		avgRunMs = s.TotalRunDuration / float64(s.TotalRuns) * 1000
	}

	return map[string]interface{}{
		"uptime_seconds":     int64(m.Uptime().Seconds()),
		"requests_total":     s.TotalRequests,
		"request_errors":     s.TotalErrors,
		"runs_total":         s.TotalRuns,
		"runs_failed":        s.FailedRuns,
		"guard_trips":        s.GuardTrips,
		"avg_run_ms":         avgRunMs,
		"active_connections": s.ActiveConnections,
	}
}
