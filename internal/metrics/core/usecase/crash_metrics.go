package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

// CrashMetrics reports crash frequency relative to sessions.
func CrashMetrics(rels Relations) *domain.Metrics {
	c := rels.Of(events.EventCrash)
	if c.Empty() {
		return domain.Note("No crash data")
	}
	sessions := rels.Sessions()
	crashes, sessionCount := c.Len(), sessions.Len()

	m := domain.NewOrdered[any]()
	m.Set("total_crashes", crashes)
	m.Set("total_sessions", sessionCount)
	m.Set("crash_rate", ratio(crashes, sessionCount))

	if c.HasColumn("signal_name") {
		m.Set("crashes_by_signal", distribution(c, "signal_name", 0))
	}

	if !sessions.Empty() && sessions.HasColumn("app.platform") {
		platforms := IndexSessionField(sessions, "app.platform")
		byPlatform := newCounter()
		for _, row := range c {
			name := domain.Unknown
			if v, ok := platforms.Lookup(row.DeviceID); ok {
				if l, ok := label(v); ok {
					name = l
				}
			}
			byPlatform.add(name)
		}
		m.Set("crashes_by_platform", byPlatform.byCount(0))
	}

	if c.HasColumn("app_version") {
		byVersion := distribution(c, "app_version", 0)
		m.Set("crashes_by_version", byVersion)

		if !sessions.Empty() && sessions.HasColumn("app.version") {
			sessionsByVersion := countColumn(sessions, "app.version")
			perVersion := domain.NewOrdered[any]()
			byVersion.Each(func(version string, n int) {
				perVersion.Set(version, ratio(n, sessionsByVersion.get(version)))
			})
			m.Set("crash_rate_per_version", perVersion)
		}
	}

	if uptime := floats(c, "uptime_sec"); len(uptime) > 0 {
		m.Set("mean_uptime_before_crash_sec", round(mean(uptime), 1))
		m.Set("median_uptime_before_crash_sec", round(median(uptime), 1))
		buckets := newCounter()
		for _, f := range uptime {
			buckets.add(domain.UptimeBuckets.ClassifyFloat(f))
		}
		m.Set("uptime_distribution_before_crash", buckets.byCount(0))
	}

	return m
}

// ratio is part/whole with four decimals, or nil for an empty whole.
func ratio(part, whole int) any {
	if whole <= 0 {
		return nil
	}
	return round(float64(part)/float64(whole), 4)
}
