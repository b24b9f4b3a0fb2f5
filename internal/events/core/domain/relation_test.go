package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2026-02-01", "2026-02-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Since.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected since %v", w.Since)
	}
	if !w.Until.Equal(time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected until to be extended by one day, got %v", w.Until)
	}
	if !w.Active() {
		t.Fatalf("expected window active")
	}
}

func TestParseWindow_SameDay(t *testing.T) {
	if _, err := ParseWindow("2026-02-10", "2026-02-10"); err != nil {
		t.Fatalf("expected single-day window to be valid, got %v", err)
	}
}

func TestParseWindow_Errors(t *testing.T) {
	tests := []struct{ since, until string }{
		{"02/10/2026", ""},
		{"", "2026-13-01"},
		{"2026-02-11", "2026-02-10"},
	}
	for _, tt := range tests {
		_, err := ParseWindow(tt.since, tt.until)
		if !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("since=%q until=%q: expected ErrInvalidWindow, got %v", tt.since, tt.until, err)
		}
	}
}

func TestWindow_Open(t *testing.T) {
	var w Window
	if w.Active() {
		t.Fatalf("expected zero window inactive")
	}
	if !w.Contains(Row{}) {
		t.Fatalf("expected open window to contain rows without timestamps")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	tests := []any{
		"2026-02-10T08:30:00Z",
		"2026-02-10T10:30:00+02:00",
		"2026-02-10T08:30:00.000000Z",
		"2026-02-10 08:30:00",
		"2026-02-10T08:30",
	}
	for _, v := range tests {
		got, ok := ParseTimestamp(v)
		if !ok || !got.Equal(want) {
			t.Fatalf("%v: expected %v, got %v (ok=%v)", v, want, got, ok)
		}
		if got.Location() != time.UTC {
			t.Fatalf("%v: expected UTC, got %v", v, got.Location())
		}
	}

	for _, v := range []any{nil, "", "yesterday", 1700000000, true} {
		if _, ok := ParseTimestamp(v); ok {
			t.Fatalf("%v: expected parse failure", v)
		}
	}
}

func TestRelation_ColumnsFirstAppearance(t *testing.T) {
	r1 := NewRow(EventCrash, "a", nil, nil).Set("signal_name", "SIGSEGV").Set("uptime_sec", 5).Row()
	r2 := NewRow(EventCrash, "b", nil, nil).Set("app_version", "1.0").Set("signal_name", "SIGABRT").Row()

	got := Relation{r1, r2}.Columns()
	want := []string{"signal_name", "uptime_sec", "app_version"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRowBuilder_SkipsNil(t *testing.T) {
	row := NewRow(EventCrash, "a", nil, nil).Set("signal", nil).Row()
	if _, ok := row.Get("signal"); ok {
		t.Fatalf("expected nil value to stay absent")
	}
	if (Relation{row}).HasColumn("signal") {
		t.Fatalf("expected no signal column")
	}
}

func TestRow_WithDoesNotMutateOriginal(t *testing.T) {
	orig := NewRow(EventCrash, "a", nil, nil).Set("signal_name", "SIGSEGV").Row()
	joined := orig.With("platform", "pi")

	if _, ok := orig.Get("platform"); ok {
		t.Fatalf("expected original row untouched")
	}
	if v, _ := joined.Get("platform"); v != "pi" {
		t.Fatalf("expected joined platform, got %v", v)
	}
	if cols := (Relation{joined}).Columns(); !reflect.DeepEqual(cols, []string{"signal_name", "platform"}) {
		t.Fatalf("unexpected columns %v", cols)
	}

	removed := joined.With("signal_name", nil)
	if _, ok := removed.Get("signal_name"); ok {
		t.Fatalf("expected nil to remove the field")
	}
}
