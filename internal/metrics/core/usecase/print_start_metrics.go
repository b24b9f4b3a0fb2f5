package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

var printStartDistributions = []distributionSpec{
	{"source_distribution", "source", 0},
	{"slicer_distribution", "slicer", 10},
	{"file_size_distribution", "file_size_bucket", 0},
	{"duration_estimate_distribution", "estimated_duration_bucket", 0},
}

func PrintStartMetrics(rels Relations) *domain.Metrics {
	p := rels.Of(events.EventPrintStartContext)
	if p.Empty() {
		return domain.Note("No print start data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_print_starts", p.Len())
	setDistributions(m, p, printStartDistributions)
	m.Set("thumbnail_pct", truePct(p, "has_thumbnail"))
	m.Set("ams_active_pct", truePct(p, "ams_active"))
	return m
}
