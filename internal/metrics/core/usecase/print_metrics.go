package usecase

import (
	"sort"
	"strconv"

	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

const (
	fieldOutcome   = "outcome"
	outcomeSuccess = "success"

	fieldPrinterModel = "printer.detected_model"
	fieldKinematics   = "printer.kinematics"

	minPrintsPerModel = 5
)

// PrintMetrics reports print job reliability.
func PrintMetrics(rels Relations) *domain.Metrics {
	p := rels.Of(events.EventPrintOutcome)
	if p.Empty() {
		return domain.Note("No print data")
	}
	sessions := rels.Sessions()
	total := p.Len()

	m := domain.NewOrdered[any]()
	m.Set("total_prints", total)

	if p.HasColumn(fieldOutcome) {
		counts := distribution(p, fieldOutcome, 0)
		m.Set("outcome_counts", counts)

		rates := domain.NewOrdered[any]()
		counts.Each(func(outcome string, n int) {
			rates.Set(outcome, pct(n, total))
		})
		m.Set("outcome_rates", rates)

		if ts := timed(p); !ts.Empty() {
			m.Set("success_rate_weekly", weeklySuccessRate(ts))
		}

		if !sessions.Empty() {
			withModel := JoinSessionField(p, sessions, fieldPrinterModel)
			m.Set("success_rate_by_model", successRateBy(withModel, fieldPrinterModel, minPrintsPerModel))

			withKinematics := JoinSessionField(p, sessions, fieldKinematics)
			m.Set("success_rate_by_kinematics", successRateBy(withKinematics, fieldKinematics, 1))
		}
	}

	if phases := phaseCompletion(p); phases.Len() > 0 {
		m.Set("phase_completion_distribution", phases)
	}

	if p.HasColumn("duration_sec") && p.HasColumn(fieldOutcome) {
		m.Set("avg_duration_by_outcome_sec", avgDurationByOutcome(p))
	}

	filament := newCounter()
	for _, row := range p {
		v, _ := row.Get("filament_type")
		if l, ok := label(v); ok && l != "" {
			filament.add(l)
		}
	}
	if len(filament.order) > 0 {
		m.Set("filament_type_distribution", filament.byCount(0))
	}

	if d := positiveBuckets(p, "nozzle_temp", domain.NozzleTempBuckets); d.Len() > 0 {
		m.Set("nozzle_temp_distribution", d)
	}
	if d := positiveBuckets(p, "bed_temp", domain.BedTempBuckets); d.Len() > 0 {
		m.Set("bed_temp_distribution", d)
	}

	return m
}

func weeklySuccessRate(rel events.Relation) *domain.Ordered[any] {
	totals := newCounter()
	successes := newCounter()
	for _, row := range rel {
		week := weekLabel(row.Time)
		totals.add(week)
		if outcome, _ := row.Get(fieldOutcome); outcome == outcomeSuccess {
			successes.add(week)
		}
	}
	out := domain.NewOrdered[any]()
	totals.byLabel().Each(func(week string, n int) {
		out.Set(week, pct(successes.get(week), n))
	})
	return out
}

// phaseCompletion counts prints by phases completed, truncated to an
// integer and keyed in numeric order.
func phaseCompletion(rel events.Relation) *domain.Ordered[int] {
	counts := make(map[int]int)
	for _, f := range floats(rel, "phases_completed") {
		counts[int(f)]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := domain.NewOrdered[int]()
	for _, k := range keys {
		out.Set(strconv.Itoa(k), counts[k])
	}
	return out
}

// avgDurationByOutcome maps each outcome to its mean duration, or nil
// when none of its rows has a numeric duration.
func avgDurationByOutcome(rel events.Relation) *domain.Ordered[any] {
	groups := make(map[string][]float64)
	var names []string
	for _, row := range rel {
		v, ok := row.Get(fieldOutcome)
		if !ok {
			continue
		}
		outcome, ok := label(v)
		if !ok {
			continue
		}
		if _, seen := groups[outcome]; !seen {
			names = append(names, outcome)
			groups[outcome] = nil
		}
		if d, ok := row.Get("duration_sec"); ok {
			if f, ok := domain.Number(d); ok {
				groups[outcome] = append(groups[outcome], f)
			}
		}
	}
	sort.Strings(names)

	out := domain.NewOrdered[any]()
	for _, name := range names {
		durations := groups[name]
		if len(durations) == 0 {
			out.Set(name, nil)
			continue
		}
		out.Set(name, round(mean(durations), 1))
	}
	return out
}

// positiveBuckets classifies the strictly positive values of a column.
func positiveBuckets(rel events.Relation, col string, set domain.BucketSet) *domain.Ordered[int] {
	c := newCounter()
	for _, f := range floats(rel, col) {
		if f > 0 {
			c.add(set.ClassifyFloat(f))
		}
	}
	return c.byCount(0)
}
