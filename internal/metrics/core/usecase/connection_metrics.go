package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

var connectionCounters = []string{
	"connect_count",
	"disconnect_count",
	"klippy_error_count",
	"klippy_shutdown_count",
}

// ConnectionMetrics reports link stability between the UI and Klipper.
func ConnectionMetrics(rels Relations) *domain.Metrics {
	c := rels.Of(events.EventConnectionStability)
	if c.Empty() {
		return domain.Note("No connection stability data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_sessions", c.Len())
	for _, col := range connectionCounters {
		vals := floats(c, col)
		if len(vals) == 0 {
			continue
		}
		m.Set(col+"_total", int(sum(vals)))
		m.Set(col+"_mean", round(mean(vals), 2))
	}

	if c.HasColumn("total_connected_sec") && c.HasColumn("session_duration_sec") {
		if duration := sum(floats(c, "session_duration_sec")); duration > 0 {
			connected := sum(floats(c, "total_connected_sec"))
			m.Set("overall_connected_pct", round(connected/duration*100, 1))
		}
	}

	if longest := floats(c, "longest_disconnect_sec"); len(longest) > 0 {
		m.Set("longest_disconnect_max_sec", round(maxOf(longest), 1))
		m.Set("longest_disconnect_mean_sec", round(mean(longest), 1))
	}
	return m
}
