package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

// UpdateMetrics combines failed and successful update attempts.
func UpdateMetrics(rels Relations) *domain.Metrics {
	failures := rels.Of(events.EventUpdateFailed)
	successes := rels.Of(events.EventUpdateSuccess)
	attempts := failures.Len() + successes.Len()
	if attempts == 0 {
		return domain.Note("No update data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_attempts", attempts)
	m.Set("successes", successes.Len())
	m.Set("failures", failures.Len())
	m.Set("success_rate", pct(successes.Len(), attempts))

	if !failures.Empty() {
		if failures.HasColumn("reason") {
			m.Set("failure_reasons", distribution(failures, "reason", 0))
		}
		if failures.HasColumn("platform") {
			m.Set("failures_by_platform", distribution(failures, "platform", 0))
		}
	}
	return m
}
