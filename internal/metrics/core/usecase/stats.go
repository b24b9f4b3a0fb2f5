package usecase

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"time"

	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

// floats returns the numeric values of a column, skipping rows where the
// field is absent or not coercible.
func floats(rel events.Relation, col string) []float64 {
	out := make([]float64, 0, len(rel))
	for _, row := range rel {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		if f, ok := domain.Number(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// round rounds half to even on the exact binary value, matching the
// decimal rounding used for every reported figure.
func round(x float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// pct is part/whole as a percentage with one decimal. Callers guard
// whole > 0.
func pct(part, whole int) float64 {
	return round(float64(part)/float64(whole)*100, 1)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return sum(xs) / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}

func median(xs []float64) float64 {
	return percentile(xs, 0.5)
}

// percentile uses linear interpolation between closest ranks.
func percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// label turns a scalar field value into a category label. Lists, maps
// and nil are not categories.
func label(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}

// counter tallies labels remembering first-encounter order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(l string) {
	if _, seen := c.counts[l]; !seen {
		c.order = append(c.order, l)
	}
	c.counts[l]++
}

func (c *counter) get(l string) int { return c.counts[l] }

// byCount returns labels by descending count, ties in encounter order,
// truncated to top when top > 0.
func (c *counter) byCount(top int) *domain.Ordered[int] {
	labels := append([]string(nil), c.order...)
	sort.SliceStable(labels, func(i, j int) bool {
		return c.counts[labels[i]] > c.counts[labels[j]]
	})
	if top > 0 && len(labels) > top {
		labels = labels[:top]
	}
	out := domain.NewOrdered[int]()
	for _, l := range labels {
		out.Set(l, c.counts[l])
	}
	return out
}

// byLabel returns labels in ascending order.
func (c *counter) byLabel() *domain.Ordered[int] {
	labels := append([]string(nil), c.order...)
	sort.Strings(labels)
	out := domain.NewOrdered[int]()
	for _, l := range labels {
		out.Set(l, c.counts[l])
	}
	return out
}

func countColumn(rel events.Relation, col string) *counter {
	c := newCounter()
	for _, row := range rel {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		if l, ok := label(v); ok {
			c.add(l)
		}
	}
	return c
}

// distribution counts the non-null values of a column, optionally top-N.
func distribution(rel events.Relation, col string, top int) *domain.Ordered[int] {
	return countColumn(rel, col).byCount(top)
}

// isTrue accepts a native true or a number equal to one.
func isTrue(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if domain.IsNumeric(v) {
		f, ok := domain.Number(v)
		return ok && f == 1
	}
	return false
}

// truePct is the share of non-null values that are true, 0 when the
// column has no values.
func truePct(rel events.Relation, col string) float64 {
	var n, yes int
	for _, row := range rel {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		n++
		if isTrue(v) {
			yes++
		}
	}
	if n == 0 {
		return 0
	}
	return pct(yes, n)
}

// successRateBy groups rows by col and reports the share of successful
// outcomes per group, keeping groups with at least minCount rows,
// highest rate first.
func successRateBy(rel events.Relation, col string, minCount int) *domain.Ordered[domain.GroupRate] {
	totals := newCounter()
	successes := newCounter()
	for _, row := range rel {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		l, ok := label(v)
		if !ok {
			continue
		}
		totals.add(l)
		if outcome, _ := row.Get(fieldOutcome); outcome == outcomeSuccess {
			successes.add(l)
		}
	}

	type group struct {
		name string
		rate domain.GroupRate
	}
	var groups []group
	for _, name := range totals.byLabel().Keys() {
		total := totals.get(name)
		if total < minCount {
			continue
		}
		groups = append(groups, group{name, domain.GroupRate{Rate: pct(successes.get(name), total), Total: total}})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].rate.Rate > groups[j].rate.Rate
	})

	out := domain.NewOrdered[domain.GroupRate]()
	for _, g := range groups {
		out.Set(g.name, g.rate)
	}
	return out
}

// timed returns the rows carrying a valid timestamp.
func timed(rel events.Relation) events.Relation {
	return rel.Filter(func(r events.Row) bool { return r.TimeValid })
}

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

func dayLabel(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func monthLabel(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// weekLabel names the Monday to Sunday week containing t as
// "start/end".
func weekLabel(t time.Time) string {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start.Format(dayLayout) + "/" + end.Format(dayLayout)
}
