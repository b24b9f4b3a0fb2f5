package render_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"telemetry-analytics-service/internal/clock"
	events "telemetry-analytics-service/internal/events/core/domain"
	evusecase "telemetry-analytics-service/internal/events/core/usecase"
	"telemetry-analytics-service/internal/metrics/adapters/render"
	"telemetry-analytics-service/internal/metrics/core/domain"
	"telemetry-analytics-service/internal/metrics/core/usecase"
)

var generatedAt = time.Date(2026, 2, 11, 6, 0, 0, 0, time.UTC)

func buildReport(t *testing.T, raw ...events.RawEvent) *domain.Report {
	t.Helper()
	rels := usecase.Split(evusecase.Ingest(raw, events.Window{}))
	return usecase.NewAssembler(clock.Fake(generatedAt), nil).Assemble(context.Background(), rels)
}

func fixture() []events.RawEvent {
	return []events.RawEvent{
		{"event": "session", "device_id": "a", "timestamp": "2026-02-10T08:00:00Z",
			"app": map[string]any{"platform": "pi", "version": "0.9.1"}},
		{"event": "print_outcome", "device_id": "a", "timestamp": "2026-02-10T09:00:00Z",
			"outcome": "success", "duration_sec": json.Number("5400")},
		{"event": "crash", "device_id": "a", "timestamp": "2026-02-10T10:00:00Z",
			"signal_name": "SIGSEGV", "uptime_sec": json.Number("90")},
		{"event": "update_failed", "device_id": "a", "timestamp": "2026-02-10T11:00:00Z",
			"reason": "disk_full"},
		{"event": "update_success", "device_id": "a", "timestamp": "2026-02-10T12:00:00Z"},
	}
}

// ------------------------------------------------------------
// TEXT
// ------------------------------------------------------------

func TestText_Layout(t *testing.T) {
	out := render.NewText(false).Render(buildReport(t, fixture()...))

	rule := strings.Repeat("=", 60)
	lines := strings.Split(out, "\n")
	if lines[0] != rule || lines[1] != "  HELIXSCREEN TELEMETRY REPORT" || lines[3] != rule {
		t.Fatalf("unexpected header:\n%s", strings.Join(lines[:4], "\n"))
	}
	if lines[2] != "  Generated: 2026-02-11T06:00:00Z" {
		t.Fatalf("unexpected generated line %q", lines[2])
	}
	if lines[len(lines)-1] != rule {
		t.Fatalf("expected closing rule, got %q", lines[len(lines)-1])
	}

	for _, want := range []string{
		"  Events loaded: 5 (sessions=1, prints=1, crashes=1, updates=2, memory=0,",
		"  ADOPTION METRICS",
		"  Total unique devices: 1",
		"\n  Platform:\n    pi: 1",
		"  Total prints: 1",
		"    success: 100.0% (1)",
		"\n  Avg duration by outcome:\n    success: 1.5hr",
		"  CRASH ANALYSIS",
		"  Crash rate: 100.00%",
		"  Mean uptime before crash: 1.5min",
		"  UPDATES: 2 attempts, 1 succeeded, 1 failed (50% success rate)",
		"    disk_full: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}

	// Sections with only a note are omitted past the first three.
	for _, absent := range []string{"MEMORY ANALYSIS", "ERROR ANALYSIS", "No memory snapshot data"} {
		if strings.Contains(out, absent) {
			t.Fatalf("did not expect %q in output", absent)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain renderer must not emit escape sequences")
	}
}

func TestText_NotesForCoreSections(t *testing.T) {
	out := render.NewText(false).Render(buildReport(t,
		events.RawEvent{"event": "memory_snapshot", "device_id": "a", "rss_kb": json.Number("2048")},
	))

	for _, want := range []string{
		"  ADOPTION METRICS\n" + strings.Repeat("=", 60) + "\n  No session data",
		"  No print data",
		"  No crash data",
		"  MEMORY ANALYSIS",
		"  rss_kb: mean=2048 max=2048 p95=2048",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestText_DecodedReportRendersTheSame(t *testing.T) {
	report := buildReport(t, fixture()...)
	raw, err := report.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded domain.Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := render.NewText(false).Render(&decoded)
	if !strings.Contains(out, "  Crash rate: 100.00%") || !strings.Contains(out, "UPDATES: 2 attempts") {
		t.Fatalf("unexpected decoded rendering:\n%s", out)
	}
}

func TestText_HardwareListsEveryCapability(t *testing.T) {
	out := render.NewText(false).Render(buildReport(t, events.RawEvent{
		"event": "hardware_profile", "device_id": "a", "timestamp": "2026-02-10T08:00:00Z",
		"capabilities": map[string]any{"has_chamber": true},
		"probe":        map[string]any{"has_probe": true},
	}))

	if !strings.Contains(out, "\n  Capability adoption (%):\n    has_chamber: 100.0%") {
		t.Fatalf("expected capability block\n%s", out)
	}
	for _, capability := range usecase.Capabilities {
		short := capability[strings.LastIndex(capability, ".")+1:]
		if !strings.Contains(out, "    "+short+": ") {
			t.Fatalf("expected capability %q in output\n%s", short, out)
		}
	}
}

// ------------------------------------------------------------
// HTML
// ------------------------------------------------------------

func TestMarkdown_Tables(t *testing.T) {
	md := render.Markdown(buildReport(t, fixture()...))

	for _, want := range []string{
		"## EVENT COUNTS",
		"| sessions | 1 |",
		"## ADOPTION METRICS",
		"| Metric | Value |",
		`| total\_unique\_devices | 1 |`,
		`### platform\_distribution`,
		"| pi | 1 |",
		"_No memory snapshot data_",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected markdown to contain %q\n%s", want, md)
		}
	}
}

func TestHTML_Page(t *testing.T) {
	raw := fixture()
	raw[0]["app"] = map[string]any{"platform": "<script>alert(1)</script>"}

	page, err := render.NewHTML().Render(buildReport(t, raw...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(page)

	for _, want := range []string{
		"<title>HelixScreen Telemetry Report</title>",
		"Generated: 2026-02-11T06:00:00Z",
		"<table>",
		"<h2>CRASH ANALYSIS</h2>",
		"Raw JSON",
		"&#34;generated_at&#34;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("device-supplied labels must be escaped")
	}
}
