package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

func SettingsMetrics(rels Relations) *domain.Metrics {
	s := rels.Of(events.EventSettingsSnapshot)
	if s.Empty() {
		return domain.Note("No settings snapshot data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_snapshots", s.Len())
	m.Set("theme_distribution", distribution(s, "theme", 0))
	m.Set("locale_distribution", distribution(s, "locale", 0))
	if brightness := floats(s, "brightness_pct"); len(brightness) > 0 {
		m.Set("brightness_mean", round(mean(brightness), 1))
	}
	m.Set("time_format_distribution", distribution(s, "time_format", 0))
	return m
}
