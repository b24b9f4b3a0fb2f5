package usecase

import (
	"sort"
	"time"

	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

type distributionSpec struct {
	key   string
	field string
	top   int
}

var adoptionDistributions = []distributionSpec{
	{"platform_distribution", "app.platform", 0},
	{"app_version_distribution", "app.version", 0},
	{"printer_model_top20", "printer.detected_model", 20},
	{"kinematics_distribution", "printer.kinematics", 0},
	{"display_resolution_distribution", "app.display", 0},
	{"locale_distribution", "app.locale", 0},
	{"theme_distribution", "app.theme", 0},
	{"klipper_version_distribution", "printer.klipper_version", 0},
	{"host_arch_distribution", "host.arch", 0},
}

// AdoptionMetrics describes the installed base from session events.
func AdoptionMetrics(rels Relations) *domain.Metrics {
	s := rels.Sessions()
	if s.Empty() {
		return domain.Note("No session data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_unique_devices", uniqueDevices(s))

	if ts := timed(s); !ts.Empty() {
		m.Set("active_devices_daily", activeDevices(ts, dayLabel))
		m.Set("active_devices_weekly", activeDevices(ts, weekLabel))
		m.Set("active_devices_monthly", activeDevices(ts, monthLabel))
		m.Set("new_devices_per_day", newDevicesPerDay(ts))
	}

	setDistributions(m, s, adoptionDistributions)

	if s.HasColumn("host.ram_total_mb") {
		ram := newCounter()
		for _, row := range s {
			v, _ := row.Get("host.ram_total_mb")
			ram.add(domain.RAMBuckets.Classify(v))
		}
		m.Set("ram_distribution", ram.byCount(0))
	}

	m.Set("feature_adoption_rates", featureAdoption(s))

	return m
}

func setDistributions(m *domain.Metrics, rel events.Relation, specs []distributionSpec) {
	for _, d := range specs {
		m.Set(d.key, distribution(rel, d.field, d.top))
	}
}

func uniqueDevices(rel events.Relation) int {
	seen := make(map[string]struct{})
	for _, row := range rel {
		if row.DeviceID != "" {
			seen[row.DeviceID] = struct{}{}
		}
	}
	return len(seen)
}

// activeDevices counts distinct devices per period, periods ascending.
func activeDevices(rel events.Relation, period func(time.Time) string) *domain.Ordered[int] {
	devices := make(map[string]map[string]struct{})
	for _, row := range rel {
		if row.DeviceID == "" {
			continue
		}
		p := period(row.Time)
		if devices[p] == nil {
			devices[p] = make(map[string]struct{})
		}
		devices[p][row.DeviceID] = struct{}{}
	}

	periods := make([]string, 0, len(devices))
	for p := range devices {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	out := domain.NewOrdered[int]()
	for _, p := range periods {
		out.Set(p, len(devices[p]))
	}
	return out
}

// newDevicesPerDay counts devices by the day of their earliest session.
func newDevicesPerDay(rel events.Relation) *domain.Ordered[int] {
	firstSeen := make(map[string]time.Time)
	for _, row := range rel {
		if row.DeviceID == "" {
			continue
		}
		if t, ok := firstSeen[row.DeviceID]; !ok || row.Time.Before(t) {
			firstSeen[row.DeviceID] = row.Time
		}
	}
	days := newCounter()
	for _, t := range firstSeen {
		days.add(dayLabel(t))
	}
	return days.byLabel()
}

// featureAdoption is the percentage of feature-reporting sessions that
// list each feature, most common first.
func featureAdoption(rel events.Relation) *domain.Ordered[any] {
	features := newCounter()
	reporting := 0
	for _, row := range rel {
		v, _ := row.Get("features")
		list, ok := asList(v)
		if !ok {
			continue
		}
		reporting++
		for _, f := range list {
			if l, ok := label(f); ok {
				features.add(l)
			}
		}
	}

	out := domain.NewOrdered[any]()
	if reporting == 0 {
		return out
	}
	features.byCount(0).Each(func(name string, n int) {
		out.Set(name, pct(n, reporting))
	})
	return out
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
