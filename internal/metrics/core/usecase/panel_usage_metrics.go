package usecase

import (
	"sort"
	"strings"

	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

const (
	panelTimePrefix   = "panel_time_sec."
	panelVisitsPrefix = "panel_visits."
)

// PanelUsageMetrics totals time and visits per UI panel.
func PanelUsageMetrics(rels Relations) *domain.Metrics {
	p := rels.Of(events.EventPanelUsage)
	if p.Empty() {
		return domain.Note("No panel usage data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_sessions", p.Len())
	if totals := panelTotals(p, panelTimePrefix); totals.Len() > 0 {
		m.Set("total_time_by_panel_sec", totals)
	}
	if visits := panelTotals(p, panelVisitsPrefix); visits.Len() > 0 {
		m.Set("total_visits_by_panel", visits)
	}
	if durations := floats(p, "session_duration_sec"); len(durations) > 0 {
		m.Set("avg_session_duration_sec", round(mean(durations), 1))
		m.Set("median_session_duration_sec", round(median(durations), 1))
	}
	return m
}

// panelTotals sums every column under prefix, missing values counting
// as zero, largest total first.
func panelTotals(rel events.Relation, prefix string) *domain.Ordered[int] {
	type total struct {
		panel string
		sum   int
	}
	var totals []total
	for _, col := range rel.Columns() {
		if !strings.HasPrefix(col, prefix) {
			continue
		}
		totals = append(totals, total{strings.TrimPrefix(col, prefix), int(sum(floats(rel, col)))})
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].sum > totals[j].sum })

	out := domain.NewOrdered[int]()
	for _, t := range totals {
		out.Set(t.panel, t.sum)
	}
	return out
}
