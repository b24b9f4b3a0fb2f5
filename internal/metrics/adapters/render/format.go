package render

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"telemetry-analytics-service/internal/metrics/core/domain"
)

const (
	generatedAtLayout = time.RFC3339Nano
	notAvailable      = "N/A"
)

func get(m *domain.Metrics, key string) any {
	v, _ := m.Get(key)
	return v
}

func entries(v any) (domain.Entries, bool) {
	e, ok := v.(domain.Entries)
	return e, ok && e != nil
}

// pyStr prints ints bare and whole floats with one decimal, so counts
// and rates read differently.
func pyStr(v any) string {
	switch x := v.(type) {
	case nil:
		return notAvailable
	case int:
		return strconv.Itoa(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}

func fixed(v any, prec int) string {
	f, ok := domain.Number(v)
	if !ok {
		return notAvailable
	}
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// percent2 formats a fraction as a percentage with two decimals.
func percent2(v any) string {
	f, ok := domain.Number(v)
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f%%", f*100)
}

func duration(v any) string {
	sec, ok := domain.Number(v)
	if !ok {
		return notAvailable
	}
	switch {
	case sec < 60:
		return fmt.Sprintf("%.0fs", sec)
	case sec < 3600:
		return fmt.Sprintf("%.1fmin", sec/60)
	}
	return fmt.Sprintf("%.1fhr", sec/3600)
}

// groupRate reads a success-rate group, in memory or decoded from JSON.
func groupRate(v any) (rate, total any) {
	switch g := v.(type) {
	case domain.GroupRate:
		return g.Rate, g.Total
	case domain.Entries:
		rate, _ = g.Entry("rate")
		total, _ = g.Entry("total")
		return rate, total
	}
	return nil, nil
}
