package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

var errorDistributions = []distributionSpec{
	{"errors_by_category", "category", 0},
	{"errors_by_code", "code", 10},
	{"errors_by_context", "context", 10},
}

func ErrorMetrics(rels Relations) *domain.Metrics {
	e := rels.Of(events.EventErrorEncountered)
	if e.Empty() {
		return domain.Note("No error data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_errors", e.Len())
	setDistributions(m, e, errorDistributions)
	return m
}
