package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/ports"
)

// ErrNoData is returned when the source holds no events at all.
var ErrNoData = domain.ErrNoData

// IngestUseCase turns a source's raw events into one unified,
// window-filtered relation.
type IngestUseCase struct {
	source ports.EventSourcePort
	logger *slog.Logger
}

func NewIngestUseCase(source ports.EventSourcePort, logger *slog.Logger) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{source: source, logger: logger}
}

// LoadRelation loads raw events from the source and ingests them.
// It returns ErrNoData when the source holds no events at all.
func (uc *IngestUseCase) LoadRelation(ctx context.Context, w domain.Window) (domain.Relation, error) {
	raw, err := uc.source.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}

	all := Ingest(raw, w)
	uc.logger.Debug("ingested events",
		"raw", len(raw),
		"in_window", all.Len(),
		"window_active", w.Active(),
	)
	return all, nil
}

// Ingest normalizes every raw event in input order, parses timestamps
// and applies the window once. Rows whose timestamp does not parse are
// kept with TimeValid=false unless a window bound is set.
func Ingest(raw []domain.RawEvent, w domain.Window) domain.Relation {
	out := make(domain.Relation, 0, len(raw))
	for _, ev := range raw {
		row := Normalize(ev)
		row.Time, row.TimeValid = domain.ParseTimestamp(row.RawTimestamp)
		if !w.Contains(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Filter re-applies a window to an already ingested relation.
func Filter(rel domain.Relation, w domain.Window) domain.Relation {
	return rel.Filter(w.Contains)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
