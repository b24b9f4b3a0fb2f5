package render

import (
	"fmt"
	"strings"

	"telemetry-analytics-service/internal/metrics/core/domain"
	"telemetry-analytics-service/internal/metrics/core/usecase"

	"github.com/charmbracelet/lipgloss"
)

const (
	ruleWidth   = 60
	reportTitle = "HELIXSCREEN TELEMETRY REPORT"
)

type textStyles struct {
	rule    lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
}

// Text renders a report as the fixed-width terminal summary.
type Text struct {
	styled bool
	styles textStyles
}

// NewText returns a text renderer. When styled is false the output is
// plain text with no escape sequences.
func NewText(styled bool) *Text {
	return &Text{
		styled: styled,
		styles: textStyles{
			rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			label:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		},
	}
}

func (t *Text) Render(r *domain.Report) string {
	b := &textBuilder{t: t}

	b.rule()
	b.line("  " + b.style(t.styles.heading, reportTitle))
	b.line("  Generated: " + r.GeneratedAt.UTC().Format(generatedAtLayout))
	b.rule()

	count := func(k string) int {
		v, _ := r.EventCounts.Get(k)
		return v
	}
	b.line(fmt.Sprintf("\n  Events loaded: %d (sessions=%d, prints=%d, crashes=%d, updates=%d, "+
		"memory=%d, hardware=%d, settings=%d, panel_usage=%d, connection=%d, print_starts=%d, errors=%d)",
		count("total"), count("sessions"), count("prints"), count("crashes"),
		count("update_successes")+count("update_failures"),
		count("memory_snapshots"), count("hardware_profiles"), count("settings_snapshots"),
		count("panel_usage"), count("connection_stability"), count("print_starts"), count("errors"),
	))

	for _, s := range r.Sections {
		writer, ok := sectionWriters[s.Key]
		if !ok {
			continue
		}
		writer(b, s)
	}

	b.line("")
	b.rule()
	return strings.Join(b.lines, "\n")
}

type sectionWriter func(b *textBuilder, s domain.Section)

var sectionWriters = map[string]sectionWriter{
	domain.SectionAdoption:   writeAdoption,
	domain.SectionPrint:      writePrint,
	domain.SectionCrash:      writeCrash,
	domain.SectionUpdate:     writeUpdate,
	domain.SectionMemory:     writeMemory,
	domain.SectionHardware:   writeHardware,
	domain.SectionSettings:   writeSettings,
	domain.SectionPanelUsage: writePanelUsage,
	domain.SectionConnection: writeConnection,
	domain.SectionPrintStart: writePrintStart,
	domain.SectionErrors:     writeErrors,
}

// noted writes the heading and note of a placeholder section.
func noted(b *textBuilder, s domain.Section) bool {
	b.heading(s.Title)
	if note, ok := domain.NoteOf(s.Metrics); ok {
		b.line("  " + note)
		return true
	}
	return false
}

// skipped reports whether an optional section holds only a note.
func skipped(s domain.Section) bool {
	_, ok := domain.NoteOf(s.Metrics)
	return ok
}

func writeAdoption(b *textBuilder, s domain.Section) {
	if noted(b, s) {
		return
	}
	m := s.Metrics
	b.line("  Total unique devices: " + pyStr(get(m, "total_unique_devices")))
	b.distribution("Platform", get(m, "platform_distribution"))
	b.distribution("App version", get(m, "app_version_distribution"))
	b.distribution("Printer model (top 20)", get(m, "printer_model_top20"))
	b.distribution("Kinematics", get(m, "kinematics_distribution"))
	b.distribution("Display", get(m, "display_resolution_distribution"))
	b.distribution("Locale", get(m, "locale_distribution"))
	b.distribution("Theme", get(m, "theme_distribution"))
	b.distribution("Klipper version", get(m, "klipper_version_distribution"))
	b.distribution("Host arch", get(m, "host_arch_distribution"))
	b.distribution("RAM", get(m, "ram_distribution"))
	b.percentages("Feature adoption (%)", get(m, "feature_adoption_rates"))
}

func writePrint(b *textBuilder, s domain.Section) {
	if noted(b, s) {
		return
	}
	m := s.Metrics
	b.line("  Total prints: " + pyStr(get(m, "total_prints")))
	if rates, ok := entries(get(m, "outcome_rates")); ok {
		counts, _ := entries(get(m, "outcome_counts"))
		for _, outcome := range rates.Keys() {
			rate, _ := rates.Entry(outcome)
			var count any = 0
			if counts != nil {
				if c, ok := counts.Entry(outcome); ok {
					count = c
				}
			}
			b.line(fmt.Sprintf("    %s: %s%% (%s)", outcome, pyStr(rate), pyStr(count)))
		}
	}

	b.distribution("Filament type", get(m, "filament_type_distribution"))

	if avg, ok := entries(get(m, "avg_duration_by_outcome_sec")); ok && len(avg.Keys()) > 0 {
		b.line("\n  Avg duration by outcome:")
		for _, outcome := range avg.Keys() {
			d, _ := avg.Entry(outcome)
			b.line(fmt.Sprintf("    %s: %s", outcome, duration(d)))
		}
	}

	b.distribution("Print start phases completed", get(m, "phase_completion_distribution"))
	b.distribution("Nozzle temp", get(m, "nozzle_temp_distribution"))
	b.distribution("Bed temp", get(m, "bed_temp_distribution"))

	if weekly, ok := entries(get(m, "success_rate_weekly")); ok && len(weekly.Keys()) > 0 {
		b.line("\n  Success rate (weekly):")
		for _, period := range weekly.Keys() {
			rate, _ := weekly.Entry(period)
			b.line(fmt.Sprintf("    %s: %s%%", period, pyStr(rate)))
		}
	}

	b.groupRates("Success rate by printer model (min 5 prints)", get(m, "success_rate_by_model"))
	b.groupRates("Success rate by kinematics", get(m, "success_rate_by_kinematics"))
}

func writeCrash(b *textBuilder, s domain.Section) {
	if noted(b, s) {
		return
	}
	m := s.Metrics
	b.line("  Total crashes: " + pyStr(get(m, "total_crashes")))
	b.line("  Total sessions: " + pyStr(get(m, "total_sessions")))
	b.line("  Crash rate: " + percent2(get(m, "crash_rate")))

	if v := get(m, "mean_uptime_before_crash_sec"); v != nil {
		b.line("  Mean uptime before crash: " + duration(v))
	}
	if v := get(m, "median_uptime_before_crash_sec"); v != nil {
		b.line("  Median uptime before crash: " + duration(v))
	}

	b.distribution("Crashes by signal", get(m, "crashes_by_signal"))
	b.distribution("Crashes by platform", get(m, "crashes_by_platform"))
	b.distribution("Crashes by version", get(m, "crashes_by_version"))

	if perVersion, ok := entries(get(m, "crash_rate_per_version")); ok && len(perVersion.Keys()) > 0 {
		b.line("\n  Crash rate per version:")
		for _, version := range perVersion.Keys() {
			rate, _ := perVersion.Entry(version)
			b.line(fmt.Sprintf("    %s: %s", version, percent2(rate)))
		}
	}

	b.distribution("Uptime before crash", get(m, "uptime_distribution_before_crash"))
}

func writeUpdate(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(fmt.Sprintf("UPDATES: %s attempts, %s succeeded, %s failed (%s%% success rate)",
		pyStr(get(m, "total_attempts")),
		pyStr(get(m, "successes")),
		pyStr(get(m, "failures")),
		fixed(get(m, "success_rate"), 0),
	))
	b.distribution("Failure reasons", get(m, "failure_reasons"))
	b.distribution("Failures by platform", get(m, "failures_by_platform"))
}

func writeMemory(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Total snapshots: " + pyStr(get(m, "total_snapshots")))
	for _, col := range []string{"rss_kb", "vm_size_kb", "vm_peak_kb", "vm_hwm_kb"} {
		mean := get(m, col+"_mean")
		if mean == nil {
			continue
		}
		b.line(fmt.Sprintf("  %s: mean=%s max=%s p95=%s", col,
			fixed(mean, 0), fixed(get(m, col+"_max"), 0), fixed(get(m, col+"_p95"), 0)))
	}
}

func writeHardware(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Total profiles: " + pyStr(get(m, "total_profiles")))
	b.distribution("Printer model (top 20)", get(m, "printer_model_distribution"))
	b.distribution("Kinematics", get(m, "kinematics_distribution"))
	b.distribution("Primary MCU (top 10)", get(m, "primary_mcu_distribution"))
	b.distribution("Extruder count", get(m, "extruder_count_distribution"))
	b.distribution("AMS type", get(m, "ams_type_distribution"))
	b.distribution("Display backend", get(m, "display_backend_distribution"))

	var caps []string
	for _, capability := range usecase.Capabilities {
		pct := get(m, capability+"_pct")
		if pct == nil {
			continue
		}
		short := capability[strings.LastIndex(capability, ".")+1:]
		caps = append(caps, fmt.Sprintf("    %s: %s%%", short, pyStr(pct)))
	}
	if len(caps) > 0 {
		b.line("\n  Capability adoption (%):")
		b.lines = append(b.lines, caps...)
	}
}

func writeSettings(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Total snapshots: " + pyStr(get(m, "total_snapshots")))
	b.distribution("Theme", get(m, "theme_distribution"))
	b.distribution("Locale", get(m, "locale_distribution"))
	b.distribution("Time format", get(m, "time_format_distribution"))
	if v := get(m, "brightness_mean"); v != nil {
		b.line(fmt.Sprintf("\n  Average brightness: %s%%", fixed(v, 0)))
	}
}

func writePanelUsage(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Sessions with usage data: " + pyStr(get(m, "total_sessions")))
	if f, ok := domain.Number(get(m, "avg_session_duration_sec")); ok && f != 0 {
		b.line("  Avg session duration: " + duration(f))
	}
	b.distribution("Total time by panel (sec)", get(m, "total_time_by_panel_sec"))
	b.distribution("Total visits by panel", get(m, "total_visits_by_panel"))
}

func writeConnection(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Sessions: " + pyStr(get(m, "total_sessions")))
	if v := get(m, "overall_connected_pct"); v != nil {
		b.line(fmt.Sprintf("  Overall connected: %s%%", fixed(v, 1)))
	}
	for _, col := range []string{"connect_count", "disconnect_count", "klippy_error_count", "klippy_shutdown_count"} {
		total := get(m, col+"_total")
		if total == nil {
			continue
		}
		b.line(fmt.Sprintf("  %s: total=%s mean=%s/session", col, pyStr(total), fixed(get(m, col+"_mean"), 2)))
	}
	if v := get(m, "longest_disconnect_max_sec"); v != nil {
		b.line("  Longest disconnect: " + duration(v))
	}
}

func writePrintStart(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Total print starts: " + pyStr(get(m, "total_print_starts")))
	if v := get(m, "thumbnail_pct"); v != nil {
		b.line(fmt.Sprintf("  Has thumbnail: %s%%", fixed(v, 1)))
	}
	if v := get(m, "ams_active_pct"); v != nil {
		b.line(fmt.Sprintf("  AMS active: %s%%", fixed(v, 1)))
	}
	b.distribution("Source", get(m, "source_distribution"))
	b.distribution("Slicer (top 10)", get(m, "slicer_distribution"))
	b.distribution("File size", get(m, "file_size_distribution"))
	b.distribution("Estimated duration", get(m, "duration_estimate_distribution"))
}

func writeErrors(b *textBuilder, s domain.Section) {
	if skipped(s) {
		return
	}
	m := s.Metrics
	b.heading(s.Title)
	b.line("  Total errors: " + pyStr(get(m, "total_errors")))
	b.distribution("By category", get(m, "errors_by_category"))
	b.distribution("By code (top 10)", get(m, "errors_by_code"))
	b.distribution("By context (top 10)", get(m, "errors_by_context"))
}

// ------------------------------------------------------------
// line builder
// ------------------------------------------------------------

type textBuilder struct {
	t     *Text
	lines []string
}

func (b *textBuilder) style(s lipgloss.Style, text string) string {
	if !b.t.styled {
		return text
	}
	return s.Render(text)
}

func (b *textBuilder) line(s string) {
	b.lines = append(b.lines, s)
}

func (b *textBuilder) rule() {
	b.line(b.style(b.t.styles.rule, strings.Repeat("=", ruleWidth)))
}

// heading opens a section preceded by a blank line.
func (b *textBuilder) heading(title string) {
	b.line("")
	b.rule()
	b.line("  " + b.style(b.t.styles.heading, title))
	b.rule()
}

func (b *textBuilder) subtitle(title string) {
	b.line("\n  " + b.style(b.t.styles.label, title) + ":")
}

func (b *textBuilder) distribution(title string, v any) {
	e, ok := entries(v)
	if !ok || len(e.Keys()) == 0 {
		return
	}
	b.subtitle(title)
	for _, k := range e.Keys() {
		count, _ := e.Entry(k)
		b.line(fmt.Sprintf("    %s: %s", k, pyStr(count)))
	}
}

func (b *textBuilder) percentages(title string, v any) {
	e, ok := entries(v)
	if !ok || len(e.Keys()) == 0 {
		return
	}
	b.subtitle(title)
	for _, k := range e.Keys() {
		pct, _ := e.Entry(k)
		b.line(fmt.Sprintf("    %s: %s%%", k, pyStr(pct)))
	}
}

func (b *textBuilder) groupRates(title string, v any) {
	e, ok := entries(v)
	if !ok || len(e.Keys()) == 0 {
		return
	}
	b.subtitle(title)
	for _, k := range e.Keys() {
		raw, _ := e.Entry(k)
		rate, total := groupRate(raw)
		b.line(fmt.Sprintf("    %s: %s%% (%s prints)", k, pyStr(rate), pyStr(total)))
	}
}
