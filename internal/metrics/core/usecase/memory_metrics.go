package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

var memoryColumns = []string{"rss_kb", "vm_size_kb", "vm_peak_kb", "vm_hwm_kb"}

// MemoryMetrics summarizes process memory snapshots. A column with no
// numeric values is left out entirely.
func MemoryMetrics(rels Relations) *domain.Metrics {
	s := rels.Of(events.EventMemorySnapshot)
	if s.Empty() {
		return domain.Note("No memory snapshot data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_snapshots", s.Len())
	for _, col := range memoryColumns {
		vals := floats(s, col)
		if len(vals) == 0 {
			continue
		}
		m.Set(col+"_mean", round(mean(vals), 1))
		m.Set(col+"_max", round(maxOf(vals), 1))
		m.Set(col+"_p95", round(percentile(vals, 0.95), 1))
	}
	return m
}
