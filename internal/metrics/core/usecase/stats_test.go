package usecase

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int
		want   float64
	}{
		{66.66666, 1, 66.7},
		{0.125, 2, 0.12},
		{2.675, 2, 2.67},
		{1.0 / 3.0, 4, 0.3333},
		{60, 1, 60},
	}
	for _, tt := range tests {
		if got := round(tt.in, tt.places); got != tt.want {
			t.Fatalf("round(%v, %d): expected %v, got %v", tt.in, tt.places, tt.want, got)
		}
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	xs := []float64{10, 1, 4, 2, 3, 5, 6, 7, 8, 9}

	if got := percentile(xs, 0.95); math.Abs(got-9.55) > 1e-9 {
		t.Fatalf("expected p95 9.55, got %v", got)
	}
	if got := median(xs); got != 5.5 {
		t.Fatalf("expected median 5.5, got %v", got)
	}
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("expected median 2, got %v", got)
	}
	if got := percentile([]float64{42}, 0.95); got != 42 {
		t.Fatalf("expected single value, got %v", got)
	}
	if !math.IsNaN(percentile(nil, 0.5)) {
		t.Fatalf("expected NaN for empty input")
	}
	if xs[0] != 10 {
		t.Fatalf("percentile must not reorder its input")
	}
}

func TestIsTrue(t *testing.T) {
	truthy := []any{true, 1, 1.0, json.Number("1")}
	falsy := []any{false, 0, 2, "true", "1", json.Number("0"), nil}

	for _, v := range truthy {
		if !isTrue(v) {
			t.Fatalf("expected %v (%T) to be true", v, v)
		}
	}
	for _, v := range falsy {
		if isTrue(v) {
			t.Fatalf("expected %v (%T) to be false", v, v)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := map[any]string{
		"pi":               "pi",
		json.Number("2"):   "2",
		json.Number("2.5"): "2.5",
		true:               "true",
		3.0:                "3",
		7:                  "7",
	}
	for in, want := range tests {
		got, ok := label(in)
		if !ok || got != want {
			t.Fatalf("label(%v): expected %q, got %q", in, want, got)
		}
	}
	for _, in := range []any{nil, []any{"a"}, map[string]any{"a": 1}} {
		if _, ok := label(in); ok {
			t.Fatalf("label(%v): expected no label", in)
		}
	}
}

func TestCounter_ByCountStableTies(t *testing.T) {
	c := newCounter()
	for _, l := range []string{"b", "a", "c", "a", "c", "d"} {
		c.add(l)
	}

	got := c.byCount(0).Keys()
	want := []string{"a", "c", "b", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	top := c.byCount(2).Keys()
	if !reflect.DeepEqual(top, []string{"a", "c"}) {
		t.Fatalf("expected top 2 [a c], got %v", top)
	}
}

func TestWeekLabel(t *testing.T) {
	tests := map[time.Time]string{
		time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC):    "2026-02-09/2026-02-15",
		time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC): "2026-02-09/2026-02-15",
		time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC):   "2026-02-16/2026-02-22",
		time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC):   "2025-12-29/2026-01-04",
	}
	for in, want := range tests {
		if got := weekLabel(in); got != want {
			t.Fatalf("weekLabel(%v): expected %q, got %q", in, want, got)
		}
	}
}
