package ports

import (
	"context"

	"telemetry-analytics-service/internal/events/core/domain"
)

// EventSourcePort loads every raw event a source holds, in a stable
// order. Unreadable records are the source's concern: it skips them
// and reports only failures that prevent loading anything at all.
type EventSourcePort interface {
	LoadEvents(ctx context.Context) ([]domain.RawEvent, error)
}
