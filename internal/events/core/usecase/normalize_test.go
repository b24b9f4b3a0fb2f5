package usecase_test

import (
	"reflect"
	"testing"

	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/usecase"
)

func TestNormalize_SessionFlattensSectionsAndKeepsFeatures(t *testing.T) {
	features := []any{"bed_mesh", "input_shaper"}
	row := usecase.Normalize(domain.RawEvent{
		"event":          "session",
		"device_id":      "dev-1",
		"timestamp":      "2026-02-10T08:00:00Z",
		"schema_version": 2,
		"app":            map[string]any{"version": "0.9.1", "platform": "pi"},
		"host":           map[string]any{"ram_total_mb": 2048},
		"printer":        map[string]any{"detected_model": "Voron 2.4"},
		"features":       features,
		"secret_token":   "should-not-leak",
	})

	if row.Event != domain.EventSession || row.DeviceID != "dev-1" {
		t.Fatalf("unexpected universal fields: %+v", row)
	}
	want := map[string]any{
		"app.version":            "0.9.1",
		"app.platform":           "pi",
		"host.ram_total_mb":      2048,
		"printer.detected_model": "Voron 2.4",
	}
	for k, v := range want {
		got, ok := row.Get(k)
		if !ok || got != v {
			t.Fatalf("field %s: expected %v, got %v (present=%v)", k, v, got, ok)
		}
	}
	got, ok := row.Get("features")
	if !ok || !reflect.DeepEqual(got, features) {
		t.Fatalf("expected features passed through, got %v", got)
	}
	if _, ok := row.Get("secret_token"); ok {
		t.Fatalf("expected unknown field to be dropped")
	}
	if _, ok := row.Get("app"); ok {
		t.Fatalf("expected nested section not to be copied whole")
	}
}

func TestNormalize_MissingFieldsAreAbsent(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{
		"event":     "print_outcome",
		"device_id": "dev-1",
		"outcome":   "success",
		"bed_temp":  nil,
	})

	if _, ok := row.Get("outcome"); !ok {
		t.Fatalf("expected outcome present")
	}
	for _, name := range []string{"duration_sec", "bed_temp", "nozzle_temp"} {
		if _, ok := row.Get(name); ok {
			t.Fatalf("expected %s absent", name)
		}
	}
	if _, ok := row.Get(domain.FieldTimestamp); ok {
		t.Fatalf("expected timestamp absent before ingestion")
	}
}

func TestNormalize_OtherTypesDoNotLeakFields(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{
		"event":        "crash",
		"device_id":    "dev-1",
		"signal_name":  "SIGSEGV",
		"outcome":      "success",
		"app":          map[string]any{"platform": "pi"},
		"panel_visits": map[string]any{"home": 3},
	})

	if v, _ := row.Get("signal_name"); v != "SIGSEGV" {
		t.Fatalf("expected signal_name, got %v", v)
	}
	for _, name := range []string{"outcome", "app.platform", "panel_visits.home"} {
		if _, ok := row.Get(name); ok {
			t.Fatalf("expected %s dropped from crash row", name)
		}
	}
}

func TestNormalize_PanelUsagePrefixesSections(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{
		"event":                "panel_usage",
		"device_id":            "dev-1",
		"session_duration_sec": 600,
		"panel_time_sec":       map[string]any{"home": 300, "controls": 120},
		"panel_visits":         map[string]any{"home": 4},
	})

	cols := domain.Relation{row}.Columns()
	want := []string{"session_duration_sec", "panel_time_sec.controls", "panel_time_sec.home", "panel_visits.home"}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("expected columns %v, got %v", want, cols)
	}
}

func TestNormalize_HardwareSectionsAndNonObjectSections(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{
		"event":           "hardware_profile",
		"device_id":       "dev-1",
		"printer":         map[string]any{"kinematics": "corexy"},
		"capabilities":    map[string]any{"has_chamber": true},
		"probe":           "not-an-object",
		"display_backend": "drm",
	})

	if v, _ := row.Get("printer.kinematics"); v != "corexy" {
		t.Fatalf("expected printer.kinematics, got %v", v)
	}
	if v, _ := row.Get("capabilities.has_chamber"); v != true {
		t.Fatalf("expected capabilities.has_chamber, got %v", v)
	}
	if v, _ := row.Get("display_backend"); v != "drm" {
		t.Fatalf("expected display_backend, got %v", v)
	}
	if _, ok := row.Get("probe"); ok {
		t.Fatalf("expected non-object section skipped")
	}
}

func TestNormalize_UnknownTypeKeepsUniversalFieldsOnly(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{
		"event":          "mystery",
		"device_id":      "dev-9",
		"timestamp":      "2026-02-10T08:00:00Z",
		"schema_version": 1,
		"outcome":        "success",
	})

	if row.Event != "mystery" || row.DeviceID != "dev-9" || row.SchemaVersion != 1 {
		t.Fatalf("unexpected universal fields: %+v", row)
	}
	if len(row.Fields) != 0 {
		t.Fatalf("expected no typed fields, got %v", row.Fields)
	}
	if row.Event.Recognized() {
		t.Fatalf("expected mystery to be unrecognized")
	}
}

func TestNormalize_MissingEventTag(t *testing.T) {
	row := usecase.Normalize(domain.RawEvent{"device_id": "dev-1"})
	if row.Event != "" {
		t.Fatalf("expected empty event, got %q", row.Event)
	}
	if _, ok := row.Get(domain.FieldEvent); ok {
		t.Fatalf("expected event absent")
	}
}

func TestNormalize_SessionFeaturesDefaultToEmptyList(t *testing.T) {
	missing := usecase.Normalize(domain.RawEvent{"event": "session", "device_id": "dev-1"})
	got, ok := missing.Get("features")
	if !ok || !reflect.DeepEqual(got, []any{}) {
		t.Fatalf("expected empty features list, got %v (present=%v)", got, ok)
	}

	null := usecase.Normalize(domain.RawEvent{"event": "session", "device_id": "dev-1", "features": nil})
	if _, ok := null.Get("features"); ok {
		t.Fatalf("expected explicit null features to stay absent")
	}
}
