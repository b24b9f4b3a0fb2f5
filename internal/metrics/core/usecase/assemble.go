package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"telemetry-analytics-service/internal/clock"
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

// Calculator computes one report section from the split relations.
type Calculator struct {
	Key     string
	Compute func(Relations) *domain.Metrics
}

// DefaultCalculators lists every section in report order.
var DefaultCalculators = []Calculator{
	{domain.SectionAdoption, AdoptionMetrics},
	{domain.SectionPrint, PrintMetrics},
	{domain.SectionCrash, CrashMetrics},
	{domain.SectionUpdate, UpdateMetrics},
	{domain.SectionMemory, MemoryMetrics},
	{domain.SectionHardware, HardwareMetrics},
	{domain.SectionSettings, SettingsMetrics},
	{domain.SectionPanelUsage, PanelUsageMetrics},
	{domain.SectionConnection, ConnectionMetrics},
	{domain.SectionPrintStart, PrintStartMetrics},
	{domain.SectionErrors, ErrorMetrics},
}

// eventCountKeys names the per-relation counts in report order.
var eventCountKeys = []struct {
	key string
	typ events.EventType
}{
	{"sessions", events.EventSession},
	{"prints", events.EventPrintOutcome},
	{"crashes", events.EventCrash},
	{"update_failures", events.EventUpdateFailed},
	{"update_successes", events.EventUpdateSuccess},
	{"memory_snapshots", events.EventMemorySnapshot},
	{"hardware_profiles", events.EventHardwareProfile},
	{"settings_snapshots", events.EventSettingsSnapshot},
	{"panel_usage", events.EventPanelUsage},
	{"connection_stability", events.EventConnectionStability},
	{"print_starts", events.EventPrintStartContext},
	{"errors", events.EventErrorEncountered},
}

const noteCalculationFailed = "Calculation failed"

// Assembler runs the calculators and builds the report.
type Assembler struct {
	clock       clock.Clock
	logger      *slog.Logger
	calculators []Calculator
}

// NewAssembler uses DefaultCalculators unless calculators are given.
func NewAssembler(clk clock.Clock, logger *slog.Logger, calculators ...Calculator) *Assembler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(calculators) == 0 {
		calculators = DefaultCalculators
	}
	return &Assembler{clock: clk, logger: logger, calculators: calculators}
}

// Assemble runs every calculator concurrently. Relations are read-only
// so calculators share them freely; a calculator that panics yields a
// "Calculation failed" note without affecting the others.
func (a *Assembler) Assemble(ctx context.Context, rels Relations) *domain.Report {
	sections := make([]domain.Section, len(a.calculators))

	var g errgroup.Group
	for i, calc := range a.calculators {
		i, calc := i, calc
		g.Go(func() error {
			sections[i] = domain.Section{
				Key:     calc.Key,
				Title:   domain.SectionTitle(calc.Key),
				Metrics: a.run(ctx, calc, rels),
			}
			return nil
		})
	}
	_ = g.Wait()

	return &domain.Report{
		GeneratedAt: a.clock.Now().UTC(),
		EventCounts: eventCounts(rels),
		Sections:    sections,
	}
}

func (a *Assembler) run(ctx context.Context, calc Calculator, rels Relations) (m *domain.Metrics) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "metric calculation failed", "section", calc.Key, "panic", r)
			m = domain.Note(noteCalculationFailed)
		}
	}()
	m = calc.Compute(rels)
	if m == nil {
		m = domain.NewOrdered[any]()
	}
	return m
}

func eventCounts(rels Relations) *domain.Ordered[int] {
	counts := domain.NewOrdered[int]()
	for _, ec := range eventCountKeys {
		counts.Set(ec.key, rels.Of(ec.typ).Len())
	}
	counts.Set("total", rels.All.Len())
	return counts
}
